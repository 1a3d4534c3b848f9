// Package volatility consolidates the merged bucket grid into a single
// price series and estimates its volatility.
package volatility

import "errors"

var (
	// ErrNoData indicates that no series could be formed to estimate from.
	// It is a result, not a failure: the caller reports it and exits cleanly.
	ErrNoData = errors.New("no data available to calculate volatility")
	// ErrUnknownPolicy indicates an unknown consolidation policy.
	ErrUnknownPolicy = errors.New("unknown consolidation policy")
	// ErrUnknownBasis indicates an unknown estimator basis.
	ErrUnknownBasis = errors.New("unknown estimator basis")
	// ErrUnknownDivisor indicates an unknown variance divisor.
	ErrUnknownDivisor = errors.New("unknown variance divisor")
)
