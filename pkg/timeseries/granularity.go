// Package timeseries provides the time bucket grid that observations from
// all price feeds are merged into.
package timeseries

import (
	"strings"
	"time"
)

// Granularity is the width of one time bucket.
type Granularity string

const (
	GranularitySecond Granularity = "second"
	GranularityMinute Granularity = "minute"
	GranularityHour   Granularity = "hour"
	GranularityDay    Granularity = "day"
)

// ParseGranularity parses a granularity string. Unrecognized values fall
// back to hour, which is also the run-level default.
func ParseGranularity(s string) Granularity {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case GranularitySecond:
		return GranularitySecond
	case GranularityMinute:
		return GranularityMinute
	case GranularityHour:
		return GranularityHour
	case GranularityDay:
		return GranularityDay
	default:
		return GranularityHour
	}
}

// Duration returns the width of one bucket at this granularity.
func (g Granularity) Duration() time.Duration {
	switch g {
	case GranularitySecond:
		return time.Second
	case GranularityMinute:
		return time.Minute
	case GranularityDay:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// Round truncates a timestamp to the start of its containing bucket.
// Timestamps are treated as UTC. An unrecognized granularity rounds
// like hour.
func Round(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case GranularitySecond:
		return t.Truncate(time.Second)
	case GranularityMinute:
		return t.Truncate(time.Minute)
	case GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return t.Truncate(time.Hour)
	}
}
