package timeseries

import "time"

// Slot identifies which feed a price belongs to inside a bucket.
type Slot int

const (
	// SlotPolygon holds the volume-weighted average price from Polygon.
	SlotPolygon Slot = iota
	// SlotDune holds the on-chain average price from Dune Analytics.
	SlotDune
	// SlotKraken holds the OHLC-average price from Kraken.
	SlotKraken
	// SlotCoinAPI holds the OHLC-average price from CoinAPI.
	SlotCoinAPI

	// SlotCount is the number of source slots per bucket.
	SlotCount
)

// String returns the feed name for the slot.
func (s Slot) String() string {
	switch s {
	case SlotPolygon:
		return "polygon"
	case SlotDune:
		return "dune"
	case SlotKraken:
		return "kraken"
	case SlotCoinAPI:
		return "coinapi"
	default:
		return "unknown"
	}
}

// Sample is an optional price value.
type Sample struct {
	Value float64
	OK    bool
}

// Bucket holds up to one price per source feed for a single time period,
// plus the consolidated price derived from them.
type Bucket struct {
	Slots        [SlotCount]Sample
	Consolidated Sample
}

// SetSlot writes a price into a source slot, overwriting any prior value.
func (b *Bucket) SetSlot(slot Slot, price float64) {
	b.Slots[slot] = Sample{Value: price, OK: true}
}

// SlotValues returns the set source prices in slot order.
func (b *Bucket) SlotValues() []float64 {
	values := make([]float64, 0, SlotCount)
	for _, s := range b.Slots {
		if s.OK {
			values = append(values, s.Value)
		}
	}
	return values
}

// merge copies every set field of other into b, other winning on conflict.
func (b *Bucket) merge(other *Bucket) {
	for i := range other.Slots {
		if other.Slots[i].OK {
			b.Slots[i] = other.Slots[i]
		}
	}
	if other.Consolidated.OK {
		b.Consolidated = other.Consolidated
	}
}

// Observation is a single (timestamp, price) pair produced by a feed.
type Observation struct {
	Timestamp time.Time
	Price     float64
}
