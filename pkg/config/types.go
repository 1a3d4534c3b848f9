package config

import "time"

// Config is the root configuration structure for one estimation run
type Config struct {
	Periods       int             `yaml:"periods"`
	Granularity   string          `yaml:"granularity"`
	Consolidation string          `yaml:"consolidation"`
	Estimator     EstimatorConfig `yaml:"estimator"`
	FetchTimeout  Duration        `yaml:"fetch_timeout"`
	Feeds         []FeedConfig    `yaml:"feeds"`
	Metrics       MetricsConfig   `yaml:"metrics"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// EstimatorConfig selects what volatility is computed over
type EstimatorConfig struct {
	Basis   string `yaml:"basis"`   // "levels" or "returns"
	Divisor string `yaml:"divisor"` // "sample" (n-1) or "population" (n)
}

// FeedConfig configures a price feed
type FeedConfig struct {
	Name    string                 `yaml:"name"`
	Enabled bool                   `yaml:"enabled"`
	Config  map[string]interface{} `yaml:"config"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
