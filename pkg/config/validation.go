package config

import (
	"fmt"
	"strings"
)

// MaxPeriods is the exclusive upper bound for the retained window size.
const MaxPeriods = 741

// Validate checks configuration for errors. Configuration errors are fatal:
// the run aborts before any feed fetch happens.
func Validate(cfg *Config) error {
	if cfg.Periods <= 0 || cfg.Periods >= MaxPeriods {
		return fmt.Errorf("%w: got %d", ErrInvalidPeriods, cfg.Periods)
	}

	// Granularity defaults to hour when absent, but an explicitly wrong
	// value is a config error, not something to silently round over.
	granularity := strings.ToLower(cfg.Granularity)
	if granularity != "second" && granularity != "minute" && granularity != "hour" && granularity != "day" {
		return fmt.Errorf("%w: %s (must be 'second', 'minute', 'hour', or 'day')", ErrInvalidGranularity, cfg.Granularity)
	}

	// Consolidation policy
	policy := strings.ToLower(cfg.Consolidation)
	if policy != "max" && policy != "min" {
		return fmt.Errorf("invalid consolidation: %s (must be 'max' or 'min')", cfg.Consolidation)
	}

	// Estimator settings
	basis := strings.ToLower(cfg.Estimator.Basis)
	if basis != "levels" && basis != "returns" {
		return fmt.Errorf("invalid estimator.basis: %s (must be 'levels' or 'returns')", cfg.Estimator.Basis)
	}
	divisor := strings.ToLower(cfg.Estimator.Divisor)
	if divisor != "sample" && divisor != "population" {
		return fmt.Errorf("invalid estimator.divisor: %s (must be 'sample' or 'population')", cfg.Estimator.Divisor)
	}

	// Feeds
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("%w", ErrNoFeedsConfigured)
	}
	for i, feed := range cfg.Feeds {
		if feed.Name == "" {
			return fmt.Errorf("%w: feed %d", ErrFeedNameRequired, i)
		}
	}

	// Logging config
	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	// Validate level
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if strings.ToLower(cfg.Level) == l {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("invalid level: %s (must be one of: %s)", cfg.Level, strings.Join(validLevels, ", "))
	}

	// Validate format
	formatValid := strings.ToLower(cfg.Format) == "json" || strings.ToLower(cfg.Format) == "text"
	if !formatValid {
		return fmt.Errorf("invalid format: %s (must be 'json' or 'text')", cfg.Format)
	}

	return nil
}
