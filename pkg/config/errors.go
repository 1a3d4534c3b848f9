package config

import "errors"

var (
	// ErrInvalidPeriods indicates a period count outside the allowed range.
	ErrInvalidPeriods = errors.New("periods must be a positive integer below 741")
	// ErrInvalidGranularity indicates an unsupported run-level granularity.
	ErrInvalidGranularity = errors.New("invalid granularity")
	// ErrNoFeedsConfigured indicates that no price feed is configured.
	ErrNoFeedsConfigured = errors.New("at least one feed must be configured")
	// ErrFeedNameRequired indicates a feed entry without a name.
	ErrFeedNameRequired = errors.New("feed name must be specified")
)
