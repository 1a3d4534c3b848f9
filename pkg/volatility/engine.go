package volatility

import (
	"time"

	"github.com/halfbeep/volatility-estimator/pkg/logging"
	"github.com/halfbeep/volatility-estimator/pkg/metrics"
	"github.com/halfbeep/volatility-estimator/pkg/timeseries"
)

// Config holds the knobs of one estimation run.
type Config struct {
	Periods int     // window size, in buckets
	Policy  Policy  // consolidation extremum
	Basis   Basis   // what the estimator runs over
	Divisor Divisor // variance divisor
}

// Result is the finalized output of an estimation run: the chronologically
// ordered series with every consolidated value set, plus the volatility
// figure.
type Result struct {
	Series     []timeseries.Point
	Volatility float64
}

// Engine runs consolidation, gap filling and estimation over a fully merged
// grid. It is single-threaded: it needs a globally sorted view, so it must
// only run after every feed's merge step has completed.
type Engine struct {
	cfg    Config
	logger *logging.Logger
}

// NewEngine creates an engine for the given run configuration.
func NewEngine(cfg Config, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Run consolidates the grid, fills gaps and estimates volatility.
// It returns ErrNoData for an empty grid. A grid where no bucket has any
// source price fills entirely with 0.0 and yields a zero volatility rather
// than failing.
func (e *Engine) Run(grid *timeseries.Grid) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordEstimation(time.Since(start))
	}()

	if grid.Len() == 0 {
		return nil, ErrNoData
	}

	// Feeds may have contributed buckets at raw timestamps or outside the
	// configured window; normalize before consolidating.
	grid.Rebucket()
	grid.Prune(e.cfg.Periods)

	points := grid.Snapshot()
	values := make([]float64, len(points))
	set := make([]bool, len(points))
	for i, p := range points {
		if s := Consolidate(p.Bucket, e.cfg.Policy); s.OK {
			values[i] = s.Value
			set[i] = true
		}
	}

	filled := fillGaps(values, set)
	if filled > 0 {
		metrics.RecordGapsFilled(filled)
		e.logger.Debug("Filled empty buckets", "count", filled, "total", len(points))
	}

	for i, p := range points {
		grid.SetConsolidated(p.Time, values[i])
	}

	estimator := Estimator{Basis: e.cfg.Basis, Divisor: e.cfg.Divisor}
	vol, err := estimator.Estimate(values)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Estimation complete",
		"buckets", len(points),
		"filled", filled,
		"basis", string(e.cfg.Basis),
		"volatility", vol)

	return &Result{
		Series:     grid.Snapshot(),
		Volatility: vol,
	}, nil
}
