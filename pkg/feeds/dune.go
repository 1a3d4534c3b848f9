package feeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halfbeep/volatility-estimator/pkg/logging"
	"github.com/halfbeep/volatility-estimator/pkg/timeseries"
)

const (
	duneAPIURL = "https://api.dune.com/api/v1"

	// duneMaxPrice is the default sanity cap: rows above it are treated as
	// bad on-chain data and dropped before they can skew the estimate.
	duneMaxPrice = 8000.0
)

// duneTimeLayouts are the timestamp formats observed in query results.
var duneTimeLayouts = []string{
	"2006-01-02 15:04:05.000 MST",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// DuneFeed fetches on-chain average prices from saved Dune Analytics
// queries. Each granularity has its own query, so the feed needs one query
// ID per granularity it is expected to serve.
type DuneFeed struct {
	apiURL   string
	apiKey   string
	queryIDs map[timeseries.Granularity]string
	maxPrice float64
	logger   *logging.Logger
}

// duneResponse is the query results response shape.
type duneResponse struct {
	Result duneResult `json:"result"`
}

type duneResult struct {
	Rows []duneRow `json:"rows"`
}

type duneRow struct {
	Tspan        string    `json:"tspan"`
	AveragePrice dunePrice `json:"average_eth_price"`
}

// dunePrice handles the query engine emitting prices as numbers, numeric
// strings, or the literals "Infinity"/"-Infinity"/"NaN". Non-finite values
// are kept as unset rather than failing the whole response.
type dunePrice struct {
	value  decimal.Decimal
	finite bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *dunePrice) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	switch s {
	case "Infinity", "-Infinity", "NaN", "null":
		p.finite = false
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: price %q", ErrInvalidResponse, s)
	}
	p.value = d
	p.finite = true
	return nil
}

// NewDuneFeed creates a new Dune Analytics feed.
func NewDuneFeed(config map[string]interface{}) (Feed, error) {
	logger := GetLoggerFromConfig(config)

	apiKey := getString(config, "api_key", "")
	if apiKey == "" {
		return nil, fmt.Errorf("dune: %w", ErrAPIKeyRequired)
	}

	queryIDs, err := parseQueryIDs(config)
	if err != nil {
		return nil, fmt.Errorf("dune: %w", err)
	}

	return &DuneFeed{
		apiURL:   getString(config, "api_url", duneAPIURL),
		apiKey:   apiKey,
		queryIDs: queryIDs,
		maxPrice: getFloat(config, "max_price", duneMaxPrice),
		logger:   logger,
	}, nil
}

// parseQueryIDs extracts the per-granularity query ID mapping from config.
// Expected format: query_ids: { hour: "12345", day: "12346" }.
func parseQueryIDs(config map[string]interface{}) (map[timeseries.Granularity]string, error) {
	raw, ok := config["query_ids"]
	if !ok {
		return nil, fmt.Errorf("%w: 'query_ids' key", ErrInvalidConfig)
	}
	rawMap, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: query_ids must be a map", ErrInvalidConfig)
	}

	queryIDs := make(map[timeseries.Granularity]string, len(rawMap))
	for granularity, idRaw := range rawMap {
		id, ok := idRaw.(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: query_ids.%s must be a non-empty string", ErrInvalidConfig, granularity)
		}
		queryIDs[timeseries.Granularity(strings.ToLower(granularity))] = id
	}
	if len(queryIDs) == 0 {
		return nil, fmt.Errorf("%w: query_ids is empty", ErrInvalidConfig)
	}
	return queryIDs, nil
}

// Name returns the feed name.
func (f *DuneFeed) Name() string {
	return "dune"
}

// Slot returns the grid slot for Dune prices.
func (f *DuneFeed) Slot() timeseries.Slot {
	return timeseries.SlotDune
}

// Fetch fetches the saved query's rows. Granularities without a configured
// query ID are unsupported.
func (f *DuneFeed) Fetch(ctx context.Context, granularity timeseries.Granularity, periods int) ([]timeseries.Observation, error) {
	queryID, ok := f.queryIDs[granularity]
	if !ok {
		return nil, fmt.Errorf("dune: %w: %s (no query configured)", ErrUnsupportedGranularity, granularity)
	}

	url := fmt.Sprintf("%s/query/%s/results?limit=%d", f.apiURL, queryID, periods)
	headers := map[string]string{"X-Dune-API-Key": f.apiKey}

	var response duneResponse
	if err := fetchJSON(ctx, url, headers, &response); err != nil {
		return nil, fmt.Errorf("dune: %w", err)
	}

	observations := make([]timeseries.Observation, 0, len(response.Result.Rows))
	dropped := 0
	for _, row := range response.Result.Rows {
		if !row.AveragePrice.finite {
			dropped++
			continue
		}
		price := row.AveragePrice.value.InexactFloat64()
		if price > f.maxPrice {
			dropped++
			continue
		}

		timestamp, err := parseDuneTime(row.Tspan)
		if err != nil {
			f.logger.Warn("Failed to parse Dune timestamp", "tspan", row.Tspan)
			continue
		}

		observations = append(observations, timeseries.Observation{
			Timestamp: timestamp,
			Price:     price,
		})
	}

	if dropped > 0 {
		f.logger.Debug("Dropped Dune rows failing sanity checks", "count", dropped)
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("dune: %w", ErrNoObservations)
	}

	f.logger.Debug("Fetched Dune rows", "count", len(observations))
	return observations, nil
}

// parseDuneTime tries the known timestamp layouts in order.
func parseDuneTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range duneTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrInvalidResponse, s)
}
