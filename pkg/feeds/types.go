package feeds

import (
	"context"
	"fmt"
	"sync"

	"github.com/halfbeep/volatility-estimator/pkg/timeseries"
)

// Feed defines the interface that all price feed adapters implement.
// A feed performs one HTTP call per estimation run and returns the
// observations it could parse; every failure it reports is recoverable and
// only costs the run that feed's slot.
type Feed interface {
	// Name returns the unique name of this feed
	Name() string

	// Slot returns the grid slot this feed's prices belong to
	Slot() timeseries.Slot

	// Fetch returns the feed's (timestamp, price) observations covering the
	// most recent periods at the given granularity
	Fetch(ctx context.Context, granularity timeseries.Granularity, periods int) ([]timeseries.Observation, error)
}

// Factory is a function that creates a new Feed instance
type Factory func(config map[string]interface{}) (Feed, error)

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register adds a feed factory to the registry
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = factory
}

// Create creates a new feed instance by name
func Create(name string, config map[string]interface{}) (Feed, error) {
	mu.RLock()
	defer mu.RUnlock()

	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeed, name)
	}

	return factory(config)
}

// List returns all registered feed names
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
