package timeseries

import (
	"sort"
	"sync"
	"time"
)

// Grid is the full mapping from bucket start time to bucket. It is created
// once per estimation run, mutated by the per-feed merge steps and by the
// consolidation engine, and discarded afterwards.
//
// Merges for different slots are commutative, so the fetch goroutines may
// deliver their observations in any order. A single RWMutex guards the map;
// merge steps take the write lock, reporting takes the read lock.
type Grid struct {
	mu          sync.RWMutex
	granularity Granularity
	buckets     map[time.Time]*Bucket
}

// NewGrid builds a grid of exactly periods buckets at the given granularity,
// stepping backward one bucket width at a time from now. All fields start
// unset. Duplicate rounded timestamps collapse to one bucket.
func NewGrid(now time.Time, periods int, g Granularity) *Grid {
	grid := &Grid{
		granularity: g,
		buckets:     make(map[time.Time]*Bucket, periods),
	}
	step := g.Duration()
	for i := 0; i < periods; i++ {
		key := Round(now.Add(-time.Duration(i)*step), g)
		if _, ok := grid.buckets[key]; !ok {
			grid.buckets[key] = &Bucket{}
		}
	}
	return grid
}

// Granularity returns the grid's configured granularity.
func (g *Grid) Granularity() Granularity {
	return g.granularity
}

// Len returns the number of buckets currently in the grid.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.buckets)
}

// Merge writes one feed's observations into its slot. Each timestamp is
// rounded into the grid's granularity; a bucket is created if the rounded
// timestamp is not already present. Observations are sorted by timestamp
// first so that when two of them round into the same bucket the most recent
// one wins, not whichever the feed happened to emit last.
func (g *Grid) Merge(slot Slot, observations []Observation) {
	sorted := make([]Observation, len(observations))
	copy(sorted, observations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, obs := range sorted {
		key := Round(obs.Timestamp, g.granularity)
		bucket, ok := g.buckets[key]
		if !ok {
			bucket = &Bucket{}
			g.buckets[key] = bucket
		}
		bucket.SetSlot(slot, obs.Price)
	}
}

// Rebucket re-rounds every key to the grid's granularity and coalesces
// buckets that collide, later timestamps winning per field. Needed when a
// feed populated the grid with raw sub-granularity timestamps.
func (g *Grid) Rebucket() {
	g.mu.Lock()
	defer g.mu.Unlock()

	keys := make([]time.Time, 0, len(g.buckets))
	for key := range g.buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	rebucketed := make(map[time.Time]*Bucket, len(g.buckets))
	for _, key := range keys {
		rounded := Round(key, g.granularity)
		if existing, ok := rebucketed[rounded]; ok {
			existing.merge(g.buckets[key])
		} else {
			rebucketed[rounded] = g.buckets[key]
		}
	}
	g.buckets = rebucketed
}

// Prune removes all but the chronologically most recent n buckets. It must
// run once, after every feed has merged in and after any Rebucket pass, so
// buckets contributed by a feed outside the configured window cannot grow
// the grid past it.
func (g *Grid) Prune(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.buckets) <= n {
		return
	}
	keys := make([]time.Time, 0, len(g.buckets))
	for key := range g.buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	for _, key := range keys[:len(keys)-n] {
		delete(g.buckets, key)
	}
}

// Point is one bucket together with its start time.
type Point struct {
	Time   time.Time
	Bucket Bucket
}

// Snapshot returns a copy of the grid as a chronologically ascending series.
// Bucket storage has no inherent order, so this explicit sort is what the
// interpolation and estimation stages rely on.
func (g *Grid) Snapshot() []Point {
	g.mu.RLock()
	defer g.mu.RUnlock()

	points := make([]Point, 0, len(g.buckets))
	for key, bucket := range g.buckets {
		points = append(points, Point{Time: key, Bucket: *bucket})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}

// SetConsolidated writes a consolidated price back into a bucket. Missing
// keys are ignored.
func (g *Grid) SetConsolidated(key time.Time, price float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if bucket, ok := g.buckets[key]; ok {
		bucket.Consolidated = Sample{Value: price, OK: true}
	}
}
