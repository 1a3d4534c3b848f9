package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/halfbeep/volatility-estimator/pkg/logging"
	"github.com/halfbeep/volatility-estimator/pkg/version"
)

// GetLoggerFromConfig extracts the logger from a config map or returns a
// noop logger. Feeds should use this to get the logger passed from main.go.
func GetLoggerFromConfig(config map[string]interface{}) *logging.Logger {
	if loggerInterface, ok := config["logger"]; ok {
		if logger, ok := loggerInterface.(*logging.Logger); ok {
			return logger
		}
	}

	return logging.NewNoopLogger()
}

// getString retrieves a string value from a config map with a default.
func getString(config map[string]interface{}, key, defaultValue string) string {
	if val, ok := config[key]; ok {
		if str, ok := val.(string); ok && str != "" {
			return str
		}
	}
	return defaultValue
}

// getFloat retrieves a numeric value from a config map with a default.
// YAML decodes integers and floats differently, so both are accepted.
func getFloat(config map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := config[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return defaultValue
}

// fetchJSON performs a GET request and unmarshals the JSON response body
// into out. Rate limiting and non-200 statuses surface as distinct errors.
func fetchJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.AgentString())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w (HTTP 429)", ErrRateLimitExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}
