// Package feeds provides price feed adapters and their registry.
package feeds

import "errors"

var (
	// ErrUnknownFeed indicates that no factory is registered for the name.
	ErrUnknownFeed = errors.New("unknown feed")
	// ErrUnsupportedGranularity indicates that the feed cannot serve the
	// requested granularity. Recoverable: the feed's slot stays unset.
	ErrUnsupportedGranularity = errors.New("unsupported granularity")
	// ErrAPIKeyRequired indicates that an API key is required.
	ErrAPIKeyRequired = errors.New("API key is required")
	// ErrRateLimitExceeded indicates that a rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrInvalidResponse indicates an invalid response from the feed.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrAPIError indicates an error reported by the feed's API.
	ErrAPIError = errors.New("API error")
	// ErrNoObservations indicates that no usable observations were parsed.
	ErrNoObservations = errors.New("no observations in response")
	// ErrInvalidConfig indicates that the feed configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)
