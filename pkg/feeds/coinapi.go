package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/halfbeep/volatility-estimator/pkg/logging"
	"github.com/halfbeep/volatility-estimator/pkg/timeseries"
)

const (
	coinapiAPIURL       = "https://rest.coinapi.io/v1/ohlcv"
	coinapiDefaultAsset = "BITFINEX_SPOT_ETH_USD"
)

// CoinAPIFeed fetches OHLCV history from CoinAPI and reports the OHLC
// average as the bucket price.
type CoinAPIFeed struct {
	apiURL string
	apiKey string
	asset  string
	logger *logging.Logger
}

// coinapiRecord is a single OHLCV history record.
type coinapiRecord struct {
	TimePeriodStart string  `json:"time_period_start"`
	PriceOpen       float64 `json:"price_open"`
	PriceHigh       float64 `json:"price_high"`
	PriceLow        float64 `json:"price_low"`
	PriceClose      float64 `json:"price_close"`
	VolumeTraded    float64 `json:"volume_traded"`
	TradesCount     int64   `json:"trades_count"`
}

// NewCoinAPIFeed creates a new CoinAPI OHLCV feed.
func NewCoinAPIFeed(config map[string]interface{}) (Feed, error) {
	logger := GetLoggerFromConfig(config)

	apiKey := getString(config, "api_key", "")
	if apiKey == "" {
		return nil, fmt.Errorf("coinapi: %w", ErrAPIKeyRequired)
	}

	return &CoinAPIFeed{
		apiURL: getString(config, "api_url", coinapiAPIURL),
		apiKey: apiKey,
		asset:  getString(config, "asset", coinapiDefaultAsset),
		logger: logger,
	}, nil
}

// Name returns the feed name.
func (f *CoinAPIFeed) Name() string {
	return "coinapi"
}

// Slot returns the grid slot for CoinAPI prices.
func (f *CoinAPIFeed) Slot() timeseries.Slot {
	return timeseries.SlotCoinAPI
}

// coinapiPeriod converts a granularity to a CoinAPI period identifier.
func coinapiPeriod(granularity timeseries.Granularity) (string, error) {
	switch granularity {
	case timeseries.GranularitySecond:
		return "1SEC", nil
	case timeseries.GranularityMinute:
		return "1MIN", nil
	case timeseries.GranularityHour:
		return "1HRS", nil
	case timeseries.GranularityDay:
		return "1DAY", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedGranularity, granularity)
	}
}

// Fetch fetches OHLCV history for the configured asset.
func (f *CoinAPIFeed) Fetch(ctx context.Context, granularity timeseries.Granularity, periods int) ([]timeseries.Observation, error) {
	period, err := coinapiPeriod(granularity)
	if err != nil {
		return nil, fmt.Errorf("coinapi: %w", err)
	}

	url := fmt.Sprintf("%s/%s/history?period_id=%s&limit=%d", f.apiURL, f.asset, period, periods)
	headers := map[string]string{
		"X-CoinAPI-Key": f.apiKey,
		"Accept":        "application/json",
	}

	var records []coinapiRecord
	if err := fetchJSON(ctx, url, headers, &records); err != nil {
		return nil, fmt.Errorf("coinapi: %w", err)
	}

	observations := make([]timeseries.Observation, 0, len(records))
	for _, record := range records {
		timestamp, err := time.Parse(time.RFC3339Nano, record.TimePeriodStart)
		if err != nil {
			f.logger.Warn("Failed to parse CoinAPI timestamp", "value", record.TimePeriodStart)
			continue
		}

		average := (record.PriceOpen + record.PriceHigh + record.PriceLow + record.PriceClose) / 4.0
		observations = append(observations, timeseries.Observation{
			Timestamp: timestamp.UTC(),
			Price:     average,
		})
	}

	if len(observations) == 0 {
		return nil, fmt.Errorf("coinapi: %w", ErrNoObservations)
	}

	f.logger.Debug("Fetched CoinAPI records", "asset", f.asset, "count", len(observations))
	return observations, nil
}
