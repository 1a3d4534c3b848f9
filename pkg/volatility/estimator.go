package volatility

import (
	"fmt"
	"math"

	"github.com/halfbeep/volatility-estimator/pkg/metrics"
)

// Basis selects what the standard deviation is computed over.
type Basis string

const (
	// BasisLevels treats the consolidated prices themselves as the sample.
	// This is the default.
	BasisLevels Basis = "levels"
	// BasisReturns computes period-over-period returns first and estimates
	// over those.
	BasisReturns Basis = "returns"
)

// Divisor selects the variance divisor.
type Divisor string

const (
	// DivisorSample divides by n-1, the conventional choice for an estimate
	// from a sample. This is the default.
	DivisorSample Divisor = "sample"
	// DivisorPopulation divides by n.
	DivisorPopulation Divisor = "population"
)

// ParseBasis parses an estimator basis string. An empty string selects the
// default.
func ParseBasis(s string) (Basis, error) {
	switch Basis(s) {
	case "":
		return BasisLevels, nil
	case BasisLevels:
		return BasisLevels, nil
	case BasisReturns:
		return BasisReturns, nil
	default:
		return "", fmt.Errorf("%w: %s (supported: levels, returns)", ErrUnknownBasis, s)
	}
}

// ParseDivisor parses a variance divisor string. An empty string selects the
// default.
func ParseDivisor(s string) (Divisor, error) {
	switch Divisor(s) {
	case "":
		return DivisorSample, nil
	case DivisorSample:
		return DivisorSample, nil
	case DivisorPopulation:
		return DivisorPopulation, nil
	default:
		return "", fmt.Errorf("%w: %s (supported: sample, population)", ErrUnknownDivisor, s)
	}
}

// Estimator computes a standard-deviation volatility figure over a
// consolidated price series.
type Estimator struct {
	Basis   Basis
	Divisor Divisor
}

// Estimate returns the volatility of the given level series. It returns
// ErrNoData when the sample is empty: for BasisReturns that includes a level
// series with fewer than 2 points, since no return can be formed.
//
// A return whose previous level is exactly 0.0 is non-finite; such returns
// are dropped from the sample rather than poisoning the variance.
func (e Estimator) Estimate(levels []float64) (float64, error) {
	sample := levels
	if e.Basis == BasisReturns {
		sample = returns(levels)
	}

	n := len(sample)
	if n == 0 {
		return 0, ErrNoData
	}

	mean := 0.0
	for _, v := range sample {
		mean += v
	}
	mean /= float64(n)

	sumSq := 0.0
	for _, v := range sample {
		d := v - mean
		sumSq += d * d
	}

	divisor := float64(n)
	if e.Divisor == DivisorSample {
		if n < 2 {
			return 0, nil // a single point has no sample variance
		}
		divisor = float64(n - 1)
	}

	return math.Sqrt(sumSq / divisor), nil
}

// returns derives period-over-period returns from a level series, dropping
// non-finite values produced by a zero previous level.
func returns(levels []float64) []float64 {
	if len(levels) < 2 {
		return nil
	}
	out := make([]float64, 0, len(levels)-1)
	skipped := 0
	for i := 1; i < len(levels); i++ {
		r := (levels[i] - levels[i-1]) / levels[i-1]
		if math.IsNaN(r) || math.IsInf(r, 0) {
			skipped++
			continue
		}
		out = append(out, r)
	}
	if skipped > 0 {
		metrics.RecordReturnsSkipped(skipped)
	}
	return out
}
