package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfbeep/volatility-estimator/pkg/timeseries"
)

func TestCoinAPIFeed_RequiresAPIKey(t *testing.T) {
	_, err := NewCoinAPIFeed(map[string]interface{}{})
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestCoinAPIPeriod(t *testing.T) {
	tests := []struct {
		granularity timeseries.Granularity
		period      string
	}{
		{timeseries.GranularitySecond, "1SEC"},
		{timeseries.GranularityMinute, "1MIN"},
		{timeseries.GranularityHour, "1HRS"},
		{timeseries.GranularityDay, "1DAY"},
	}
	for _, tt := range tests {
		got, err := coinapiPeriod(tt.granularity)
		require.NoError(t, err)
		assert.Equal(t, tt.period, got)
	}

	_, err := coinapiPeriod(timeseries.Granularity("week"))
	assert.ErrorIs(t, err, ErrUnsupportedGranularity)
}

func TestCoinAPIFeed_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test", r.Header.Get("X-CoinAPI-Key"))
		assert.Equal(t, "/BITFINEX_SPOT_ETH_USD/history", r.URL.Path)
		assert.Equal(t, "1HRS", r.URL.Query().Get("period_id"))
		assert.Equal(t, "24", r.URL.Query().Get("limit"))

		w.Write([]byte(`[
			{
				"time_period_start": "2024-11-03T12:00:00.0000000Z",
				"price_open": 2400.0,
				"price_high": 2420.0,
				"price_low": 2380.0,
				"price_close": 2400.0,
				"volume_traded": 152.4,
				"trades_count": 1204
			}
		]`))
	}))
	defer server.Close()

	feed, err := NewCoinAPIFeed(map[string]interface{}{
		"api_key": "test",
		"api_url": server.URL,
	})
	require.NoError(t, err)

	obs, err := feed.Fetch(context.Background(), timeseries.GranularityHour, 24)
	require.NoError(t, err)
	require.Len(t, obs, 1)

	assert.Equal(t, time.Date(2024, 11, 3, 12, 0, 0, 0, time.UTC), obs[0].Timestamp)
	assert.InDelta(t, 2400.0, obs[0].Price, 1e-9)
}

func TestCoinAPIFeed_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	feed, err := NewCoinAPIFeed(map[string]interface{}{
		"api_key": "test",
		"api_url": server.URL,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = feed.Fetch(ctx, timeseries.GranularityHour, 24)
	assert.Error(t, err)
}

func TestCoinAPIFeed_EmptyHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	feed, err := NewCoinAPIFeed(map[string]interface{}{
		"api_key": "test",
		"api_url": server.URL,
	})
	require.NoError(t, err)

	_, err = feed.Fetch(context.Background(), timeseries.GranularityHour, 24)
	assert.ErrorIs(t, err, ErrNoObservations)
}
