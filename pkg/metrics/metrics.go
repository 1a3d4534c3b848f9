// Package metrics provides Prometheus metrics for the volatility estimator.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FeedFetchesTotal is a counter of feed fetch attempts.
	FeedFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total number of fetch attempts against price feeds",
		},
		[]string{"feed", "status"},
	)

	// FeedFetchDuration is a histogram of feed fetch latencies.
	FeedFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Duration of feed fetch operations",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"feed"},
	)

	// FeedObservationsTotal is a counter of observations merged per feed.
	FeedObservationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_observations_total",
			Help: "Total number of price observations merged into the grid",
		},
		[]string{"feed"},
	)

	// FeedHealth is a gauge of the health status of price feeds.
	FeedHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_health",
			Help: "Health status of price feeds (1=healthy, 0=unhealthy)",
		},
		[]string{"feed"},
	)

	// GapsFilledTotal is a counter of buckets filled by interpolation.
	GapsFilledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gaps_filled_total",
			Help: "Total number of empty buckets filled by interpolation",
		},
	)

	// ReturnsSkippedTotal is a counter of non-finite returns dropped.
	ReturnsSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "returns_skipped_total",
			Help: "Total number of non-finite returns dropped before estimation",
		},
	)

	// EstimationDuration is a histogram of full estimation run duration.
	EstimationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "estimation_duration_seconds",
			Help:    "Duration of consolidation, interpolation and estimation",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Init initializes the Prometheus metrics registry.
func Init() {
	prometheus.MustRegister(
		FeedFetchesTotal,
		FeedFetchDuration,
		FeedObservationsTotal,
		FeedHealth,
		GapsFilledTotal,
		ReturnsSkippedTotal,
		EstimationDuration,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      http.DefaultServeMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordFeedFetch records the outcome and duration of a feed fetch.
func RecordFeedFetch(feed, status string, duration time.Duration) {
	FeedFetchesTotal.WithLabelValues(feed, status).Inc()
	FeedFetchDuration.WithLabelValues(feed).Observe(duration.Seconds())
}

// RecordFeedHealth records the health status of a feed.
func RecordFeedHealth(feed string, healthy bool) {
	val := 0.0
	if healthy {
		val = 1.0
	}
	FeedHealth.WithLabelValues(feed).Set(val)
}

// RecordObservations records the number of observations merged for a feed.
func RecordObservations(feed string, count int) {
	FeedObservationsTotal.WithLabelValues(feed).Add(float64(count))
}

// RecordGapsFilled records buckets filled by interpolation.
func RecordGapsFilled(count int) {
	GapsFilledTotal.Add(float64(count))
}

// RecordReturnsSkipped records non-finite returns dropped during estimation.
func RecordReturnsSkipped(count int) {
	ReturnsSkippedTotal.Add(float64(count))
}

// RecordEstimation records the duration of an estimation run.
func RecordEstimation(duration time.Duration) {
	EstimationDuration.Observe(duration.Seconds())
}
