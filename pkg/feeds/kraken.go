package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halfbeep/volatility-estimator/pkg/logging"
	"github.com/halfbeep/volatility-estimator/pkg/timeseries"
)

const (
	krakenAPIURL      = "https://api.kraken.com/0/public/OHLC"
	krakenDefaultPair = "ETHPYUSD"
)

// KrakenFeed fetches OHLC candles from the Kraken public API and reports
// the OHLC average as the bucket price.
type KrakenFeed struct {
	apiURL string
	pair   string
	logger *logging.Logger
}

// krakenResponse is the OHLC endpoint response shape. Result holds one key
// per pair plus a "last" cursor; candle rows mix numbers and numeric
// strings, so they are decoded untyped and converted per value.
type krakenResponse struct {
	Error  []string               `json:"error"`
	Result map[string]interface{} `json:"result"`
}

// NewKrakenFeed creates a new Kraken OHLC feed.
func NewKrakenFeed(config map[string]interface{}) (Feed, error) {
	logger := GetLoggerFromConfig(config)

	return &KrakenFeed{
		apiURL: getString(config, "api_url", krakenAPIURL),
		pair:   getString(config, "pair", krakenDefaultPair),
		logger: logger,
	}, nil
}

// Name returns the feed name.
func (f *KrakenFeed) Name() string {
	return "kraken"
}

// Slot returns the grid slot for Kraken prices.
func (f *KrakenFeed) Slot() timeseries.Slot {
	return timeseries.SlotKraken
}

// krakenInterval converts a granularity to the OHLC interval in minutes.
// Kraken has no sub-minute candles.
func krakenInterval(granularity timeseries.Granularity) (int, error) {
	switch granularity {
	case timeseries.GranularityMinute:
		return 1, nil
	case timeseries.GranularityHour:
		return 60, nil
	case timeseries.GranularityDay:
		return 1440, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedGranularity, granularity)
	}
}

// Fetch fetches OHLC candles for the configured pair.
func (f *KrakenFeed) Fetch(ctx context.Context, granularity timeseries.Granularity, periods int) ([]timeseries.Observation, error) {
	interval, err := krakenInterval(granularity)
	if err != nil {
		return nil, fmt.Errorf("kraken: %w", err)
	}

	url := fmt.Sprintf("%s?pair=%s&interval=%d", f.apiURL, f.pair, interval)

	var response krakenResponse
	if err := fetchJSON(ctx, url, nil, &response); err != nil {
		return nil, fmt.Errorf("kraken: %w", err)
	}

	if len(response.Error) > 0 {
		return nil, fmt.Errorf("kraken: %w: %v", ErrAPIError, response.Error)
	}

	rows, err := f.candleRows(response.Result)
	if err != nil {
		return nil, fmt.Errorf("kraken: %w", err)
	}

	observations := parseKrakenCandles(rows)
	if len(observations) == 0 {
		return nil, fmt.Errorf("kraken: %w", ErrNoObservations)
	}

	f.logger.Debug("Fetched Kraken candles", "pair", f.pair, "count", len(observations))
	return observations, nil
}

// candleRows finds the candle array in the result map. Kraken sometimes
// returns the pair under its own naming (e.g. XETHZUSD for ETHUSD), so when
// the configured pair is absent the single non-"last" key is used.
func (f *KrakenFeed) candleRows(result map[string]interface{}) ([]interface{}, error) {
	raw, ok := result[f.pair]
	if !ok {
		for key, value := range result {
			if key == "last" {
				continue
			}
			f.logger.Debug("Kraken returned pair under different key", "requested", f.pair, "got", key)
			raw = value
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: no OHLC data for pair %s", ErrInvalidResponse, f.pair)
	}

	rows, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: OHLC data is not an array", ErrInvalidResponse)
	}
	return rows, nil
}

// parseKrakenCandles converts candle rows [ts, open, high, low, close, ...]
// into observations priced at the OHLC average. Malformed rows are skipped.
func parseKrakenCandles(rows []interface{}) []timeseries.Observation {
	observations := make([]timeseries.Observation, 0, len(rows))
	four := decimal.NewFromInt(4)

	for _, rowRaw := range rows {
		row, ok := rowRaw.([]interface{})
		if !ok || len(row) < 5 {
			continue
		}

		ts, err := krakenInt(row[0])
		if err != nil {
			continue
		}

		sum := decimal.Zero
		valid := true
		for _, v := range row[1:5] {
			d, err := krakenDecimal(v)
			if err != nil {
				valid = false
				break
			}
			sum = sum.Add(d)
		}
		if !valid {
			continue
		}

		observations = append(observations, timeseries.Observation{
			Timestamp: time.Unix(ts, 0).UTC(),
			Price:     sum.Div(four).InexactFloat64(),
		})
	}

	return observations
}

// krakenInt converts a candle timestamp, which may be a number or a string.
func krakenInt(v interface{}) (int64, error) {
	d, err := krakenDecimal(v)
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

// krakenDecimal converts a candle value, which may be a number or a string.
func krakenDecimal(v interface{}) (decimal.Decimal, error) {
	switch value := v.(type) {
	case float64:
		return decimal.NewFromFloat(value), nil
	case string:
		return decimal.NewFromString(value)
	default:
		return decimal.Zero, fmt.Errorf("%w: candle value %T", ErrInvalidResponse, v)
	}
}
