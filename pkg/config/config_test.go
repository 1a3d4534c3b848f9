package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
periods: 24
granularity: minute
consolidation: min
estimator:
  basis: returns
  divisor: population
fetch_timeout: 5s
feeds:
  - name: kraken
    enabled: true
    config:
      pair: ETHUSD
metrics:
  enabled: true
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.Periods)
	assert.Equal(t, "minute", cfg.Granularity)
	assert.Equal(t, "min", cfg.Consolidation)
	assert.Equal(t, "returns", cfg.Estimator.Basis)
	assert.Equal(t, "population", cfg.Estimator.Divisor)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout.ToDuration())

	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "kraken", cfg.Feeds[0].Name)
	assert.True(t, cfg.Feeds[0].Enabled)
	assert.Equal(t, "ETHUSD", cfg.Feeds[0].Config["pair"])

	// Metrics addr and path come from defaults when enabled.
	assert.Equal(t, ":9091", cfg.Metrics.Addr)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
feeds:
  - name: kraken
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Periods)
	assert.Equal(t, "hour", cfg.Granularity)
	assert.Equal(t, "max", cfg.Consolidation)
	assert.Equal(t, "levels", cfg.Estimator.Basis)
	assert.Equal(t, "sample", cfg.Estimator.Divisor)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout.ToDuration())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	require.NoError(t, Validate(cfg))
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_POLYGON_KEY", "pk_12345")

	path := writeConfig(t, `
feeds:
  - name: polygon
    enabled: true
    config:
      api_key: ${TEST_POLYGON_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pk_12345", cfg.Feeds[0].Config["api_key"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "periods: [not a number")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "fetch_timeout: soon")
	_, err := Load(path)
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Periods:       30,
		Granularity:   "hour",
		Consolidation: "max",
		Estimator:     EstimatorConfig{Basis: "levels", Divisor: "sample"},
		FetchTimeout:  Duration(10 * time.Second),
		Feeds:         []FeedConfig{{Name: "kraken", Enabled: true}},
		Logging:       LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_Periods(t *testing.T) {
	cfg := validConfig()
	cfg.Periods = 0
	assert.ErrorIs(t, Validate(cfg), ErrInvalidPeriods)

	cfg.Periods = -5
	assert.ErrorIs(t, Validate(cfg), ErrInvalidPeriods)

	cfg.Periods = MaxPeriods
	assert.ErrorIs(t, Validate(cfg), ErrInvalidPeriods)

	cfg.Periods = MaxPeriods - 1
	assert.NoError(t, Validate(cfg))
}

func TestValidate_Granularity(t *testing.T) {
	cfg := validConfig()
	cfg.Granularity = "fortnight"
	assert.ErrorIs(t, Validate(cfg), ErrInvalidGranularity)

	for _, g := range []string{"second", "minute", "hour", "day", "Hour"} {
		cfg.Granularity = g
		assert.NoError(t, Validate(cfg), "granularity %q", g)
	}
}

func TestValidate_Consolidation(t *testing.T) {
	cfg := validConfig()
	cfg.Consolidation = "median"
	assert.Error(t, Validate(cfg))

	cfg.Consolidation = "min"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_Estimator(t *testing.T) {
	cfg := validConfig()
	cfg.Estimator.Basis = "logreturns"
	assert.Error(t, Validate(cfg))

	cfg = validConfig()
	cfg.Estimator.Divisor = "bessel"
	assert.Error(t, Validate(cfg))

	cfg = validConfig()
	cfg.Estimator.Basis = "returns"
	cfg.Estimator.Divisor = "population"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_Feeds(t *testing.T) {
	cfg := validConfig()
	cfg.Feeds = nil
	assert.ErrorIs(t, Validate(cfg), ErrNoFeedsConfigured)

	cfg.Feeds = []FeedConfig{{Name: ""}}
	assert.ErrorIs(t, Validate(cfg), ErrFeedNameRequired)
}

func TestValidate_Logging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, Validate(cfg))

	cfg = validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, Validate(cfg))
}
