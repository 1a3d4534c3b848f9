package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		input    string
		expected Granularity
	}{
		{"second", GranularitySecond},
		{"minute", GranularityMinute},
		{"hour", GranularityHour},
		{"day", GranularityDay},
		{"HOUR", GranularityHour},
		{" day ", GranularityDay},
		{"", GranularityHour},
		{"fortnight", GranularityHour}, // unrecognized falls back to hour
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseGranularity(tt.input))
		})
	}
}

func TestRound(t *testing.T) {
	ts := time.Date(2024, 11, 3, 14, 37, 42, 123456789, time.UTC)

	tests := []struct {
		name        string
		granularity Granularity
		expected    time.Time
	}{
		{"second", GranularitySecond, time.Date(2024, 11, 3, 14, 37, 42, 0, time.UTC)},
		{"minute", GranularityMinute, time.Date(2024, 11, 3, 14, 37, 0, 0, time.UTC)},
		{"hour", GranularityHour, time.Date(2024, 11, 3, 14, 0, 0, 0, time.UTC)},
		{"day", GranularityDay, time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)},
		{"unknown rounds like hour", Granularity("week"), time.Date(2024, 11, 3, 14, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Round(ts, tt.granularity))
		})
	}
}

func TestRound_Idempotent(t *testing.T) {
	granularities := []Granularity{GranularitySecond, GranularityMinute, GranularityHour, GranularityDay}
	timestamps := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 23, 59, 59, 999999999, time.UTC),
		time.Now().UTC(),
	}

	for _, g := range granularities {
		for _, ts := range timestamps {
			once := Round(ts, g)
			twice := Round(once, g)
			assert.Equal(t, once, twice, "round(round(t)) != round(t) for %s at %s", g, ts)
		}
	}
}

func TestRound_NonUTCInput(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2024, 11, 3, 1, 30, 0, 0, loc) // 2024-11-02 23:30 UTC

	rounded := Round(local, GranularityDay)
	assert.Equal(t, time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC), rounded)
}
