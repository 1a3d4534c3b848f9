package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/halfbeep/volatility-estimator/pkg/logging"
	"github.com/halfbeep/volatility-estimator/pkg/timeseries"
)

const polygonAPIURL = "https://api.polygon.io/v2/aggs/ticker/X:ETHUSD/range"

// PolygonFeed fetches volume-weighted average prices from the Polygon
// aggregates API.
type PolygonFeed struct {
	apiURL     string
	apiKey     string
	multiplier int
	logger     *logging.Logger
}

// polygonResponse is the aggregates API response shape.
type polygonResponse struct {
	Results []polygonBar `json:"results"`
}

// polygonBar is a single aggregate bar.
type polygonBar struct {
	VW float64 `json:"vw"` // volume weighted average price
	T  int64   `json:"t"`  // bar start, unix milliseconds
}

// NewPolygonFeed creates a new Polygon aggregates feed.
func NewPolygonFeed(config map[string]interface{}) (Feed, error) {
	logger := GetLoggerFromConfig(config)

	apiKey := getString(config, "api_key", "")
	if apiKey == "" {
		return nil, fmt.Errorf("polygon: %w", ErrAPIKeyRequired)
	}

	return &PolygonFeed{
		apiURL:     getString(config, "api_url", polygonAPIURL),
		apiKey:     apiKey,
		multiplier: int(getFloat(config, "multiplier", 1)),
		logger:     logger,
	}, nil
}

// Name returns the feed name.
func (f *PolygonFeed) Name() string {
	return "polygon"
}

// Slot returns the grid slot for Polygon prices.
func (f *PolygonFeed) Slot() timeseries.Slot {
	return timeseries.SlotPolygon
}

// Fetch fetches aggregate bars covering the most recent periods. Polygon
// serves all four granularities.
func (f *PolygonFeed) Fetch(ctx context.Context, granularity timeseries.Granularity, periods int) ([]timeseries.Observation, error) {
	end := time.Now().UTC()
	start := end.Add(-time.Duration(periods) * granularity.Duration())

	// The aggregates range endpoint wants whole dates.
	url := fmt.Sprintf("%s/%d/%s/%s/%s?apiKey=%s",
		f.apiURL, f.multiplier, string(granularity),
		start.Format("2006-01-02"), end.Format("2006-01-02"), f.apiKey)

	var response polygonResponse
	if err := fetchJSON(ctx, url, nil, &response); err != nil {
		return nil, fmt.Errorf("polygon: %w", err)
	}

	if len(response.Results) == 0 {
		return nil, fmt.Errorf("polygon: %w", ErrNoObservations)
	}

	observations := make([]timeseries.Observation, 0, len(response.Results))
	for _, bar := range response.Results {
		observations = append(observations, timeseries.Observation{
			Timestamp: time.UnixMilli(bar.T).UTC(),
			Price:     bar.VW,
		})
	}

	f.logger.Debug("Fetched Polygon bars", "count", len(observations))
	return observations, nil
}
