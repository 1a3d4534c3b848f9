package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/halfbeep/volatility-estimator/pkg/config"
	"github.com/halfbeep/volatility-estimator/pkg/feeds"
	"github.com/halfbeep/volatility-estimator/pkg/logging"
	"github.com/halfbeep/volatility-estimator/pkg/metrics"
	"github.com/halfbeep/volatility-estimator/pkg/timeseries"
	"github.com/halfbeep/volatility-estimator/pkg/version"
	"github.com/halfbeep/volatility-estimator/pkg/volatility"
)

var (
	configFile  = flag.String("config", "config/config.yaml", "Path to configuration file")
	showVer     = flag.Bool("version", false, "Show version and exit")
	periods     = flag.Int("periods", 0, "Override number of periods to retain")
	granularity = flag.String("granularity", "", "Override bucket granularity (second/minute/hour/day)")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("volatility-estimator version %s\n", version.Version)
		os.Exit(0)
	}

	// API keys commonly live in a .env next to the config; missing file is fine.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Override run window from command line
	if *periods > 0 {
		cfg.Periods = *periods
	}
	if *granularity != "" {
		cfg.Granularity = *granularity
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("Starting volatility-estimator",
		"version", version.Version,
		"periods", cfg.Periods,
		"granularity", cfg.Granularity)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

// fetchResult carries one feed's observations (or failure) back to the
// merge pass.
type fetchResult struct {
	feed feeds.Feed
	obs  []timeseries.Observation
	err  error
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	g := timeseries.ParseGranularity(cfg.Granularity)
	now := time.Now().UTC()
	grid := timeseries.NewGrid(now, cfg.Periods, g)

	// Initialize feeds
	var activeFeeds []feeds.Feed
	for _, feedCfg := range cfg.Feeds {
		if !feedCfg.Enabled {
			continue
		}

		// Hand the logger down so feeds don't create their own
		if feedCfg.Config == nil {
			feedCfg.Config = make(map[string]interface{})
		}
		feedCfg.Config["logger"] = logger

		feed, err := feeds.Create(feedCfg.Name, feedCfg.Config)
		if err != nil {
			logger.Warn("Failed to create feed", "feed", feedCfg.Name, "error", err)
			continue
		}
		activeFeeds = append(activeFeeds, feed)
	}
	logger.Info("Initialized feeds", "count", len(activeFeeds))

	// The fetches are independent and I/O bound; run them concurrently.
	// Each feed collects into its own result, the grid is only written by
	// the sequential merge pass below, so merge commutativity is all the
	// ordering we need.
	results := make([]fetchResult, len(activeFeeds))
	var wg sync.WaitGroup
	for i, feed := range activeFeeds {
		wg.Add(1)
		go func(i int, feed feeds.Feed) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout.ToDuration())
			defer cancel()

			start := time.Now()
			obs, err := feed.Fetch(fetchCtx, g, cfg.Periods)

			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.RecordFeedFetch(feed.Name(), status, time.Since(start))
			metrics.RecordFeedHealth(feed.Name(), err == nil)

			results[i] = fetchResult{feed: feed, obs: obs, err: err}
		}(i, feed)
	}
	wg.Wait()

	// Merge pass. A failed feed just leaves its slot unset everywhere.
	for _, result := range results {
		if result.err != nil {
			logger.Warn("Feed fetch failed, slot stays empty",
				"feed", result.feed.Name(), "error", result.err)
			continue
		}
		grid.Merge(result.feed.Slot(), result.obs)
		metrics.RecordObservations(result.feed.Name(), len(result.obs))
		logger.Info("Merged feed observations",
			"feed", result.feed.Name(), "observations", len(result.obs))
	}

	policy, err := volatility.ParsePolicy(cfg.Consolidation)
	if err != nil {
		return err
	}
	basis, err := volatility.ParseBasis(cfg.Estimator.Basis)
	if err != nil {
		return err
	}
	divisor, err := volatility.ParseDivisor(cfg.Estimator.Divisor)
	if err != nil {
		return err
	}

	engine := volatility.NewEngine(volatility.Config{
		Periods: cfg.Periods,
		Policy:  policy,
		Basis:   basis,
		Divisor: divisor,
	}, logger)

	result, err := engine.Run(grid)
	if errors.Is(err, volatility.ErrNoData) {
		// Not a failure: report and exit cleanly.
		fmt.Println("No data available to calculate volatility.")
		return nil
	}
	if err != nil {
		return err
	}

	report(result, cfg, g)
	return nil
}

// report renders the finalized series and the volatility figure.
func report(result *volatility.Result, cfg *config.Config, g timeseries.Granularity) {
	fmt.Printf("%-20s %12s %12s %12s %12s %12s\n",
		"Timestamp", "Polygon", "Dune", "Kraken", "CoinAPI", "Consolidated")
	for _, point := range result.Series {
		fmt.Printf("%-20s %12s %12s %12s %12s %12s\n",
			point.Time.Format("2006-01-02 15:04:05"),
			fmtSample(point.Bucket.Slots[timeseries.SlotPolygon]),
			fmtSample(point.Bucket.Slots[timeseries.SlotDune]),
			fmtSample(point.Bucket.Slots[timeseries.SlotKraken]),
			fmtSample(point.Bucket.Slots[timeseries.SlotCoinAPI]),
			fmtSample(point.Bucket.Consolidated))
	}

	fmt.Printf("Consolidated volatility of last %d %s periods (%s consolidation, %s basis, %s divisor) = %.6f\n",
		cfg.Periods, g, cfg.Consolidation, cfg.Estimator.Basis, cfg.Estimator.Divisor, result.Volatility)
}

// fmtSample renders an optional price, "-" when unset.
func fmtSample(s timeseries.Sample) string {
	if !s.OK {
		return "-"
	}
	return fmt.Sprintf("%.4f", s.Value)
}
