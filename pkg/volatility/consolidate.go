package volatility

import (
	"fmt"

	"github.com/halfbeep/volatility-estimator/pkg/timeseries"
)

// Policy selects which extremum of the available source prices becomes the
// consolidated price for a bucket.
type Policy string

const (
	// PolicyMax takes the highest available source price. This is the
	// default.
	PolicyMax Policy = "max"
	// PolicyMin takes the lowest available source price.
	PolicyMin Policy = "min"
)

// ParsePolicy parses a consolidation policy string. An empty string selects
// the default.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyMax, nil
	case PolicyMax:
		return PolicyMax, nil
	case PolicyMin:
		return PolicyMin, nil
	default:
		return "", fmt.Errorf("%w: %s (supported: max, min)", ErrUnknownPolicy, s)
	}
}

// Consolidate derives one representative price from a bucket's set source
// slots. A bucket with no set slot stays unset.
func Consolidate(b timeseries.Bucket, policy Policy) timeseries.Sample {
	values := b.SlotValues()
	if len(values) == 0 {
		return timeseries.Sample{}
	}
	result := values[0]
	for _, v := range values[1:] {
		if policy == PolicyMin {
			if v < result {
				result = v
			}
		} else if v > result {
			result = v
		}
	}
	return timeseries.Sample{Value: result, OK: true}
}
