package volatility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfbeep/volatility-estimator/pkg/timeseries"
)

func bucketWith(prices map[timeseries.Slot]float64) timeseries.Bucket {
	var b timeseries.Bucket
	for slot, price := range prices {
		b.SetSlot(slot, price)
	}
	return b
}

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyMax, policy, "empty string selects the default")

	policy, err = ParsePolicy("min")
	require.NoError(t, err)
	assert.Equal(t, PolicyMin, policy)

	_, err = ParsePolicy("median")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestConsolidate_Max(t *testing.T) {
	b := bucketWith(map[timeseries.Slot]float64{
		timeseries.SlotPolygon: 101.0,
		timeseries.SlotDune:    99.5,
		timeseries.SlotKraken:  103.2,
		timeseries.SlotCoinAPI: 102.0,
	})

	s := Consolidate(b, PolicyMax)
	require.True(t, s.OK)
	assert.Equal(t, 103.2, s.Value)
}

func TestConsolidate_Min(t *testing.T) {
	b := bucketWith(map[timeseries.Slot]float64{
		timeseries.SlotPolygon: 101.0,
		timeseries.SlotDune:    99.5,
	})

	s := Consolidate(b, PolicyMin)
	require.True(t, s.OK)
	assert.Equal(t, 99.5, s.Value)
}

func TestConsolidate_SingleSource(t *testing.T) {
	b := bucketWith(map[timeseries.Slot]float64{timeseries.SlotDune: 77.7})

	for _, policy := range []Policy{PolicyMax, PolicyMin} {
		s := Consolidate(b, policy)
		require.True(t, s.OK)
		assert.Equal(t, 77.7, s.Value)
	}
}

func TestConsolidate_EmptyBucketStaysUnset(t *testing.T) {
	s := Consolidate(timeseries.Bucket{}, PolicyMax)
	assert.False(t, s.OK)
}

func TestConsolidate_WithinSourceBounds(t *testing.T) {
	// The consolidated value must never leave [min(sources), max(sources)].
	cases := []map[timeseries.Slot]float64{
		{timeseries.SlotPolygon: 1, timeseries.SlotKraken: 2},
		{timeseries.SlotDune: -5, timeseries.SlotCoinAPI: 5},
		{timeseries.SlotPolygon: 100, timeseries.SlotDune: 100, timeseries.SlotKraken: 100},
	}

	for _, prices := range cases {
		b := bucketWith(prices)
		lo, hi := prices[minSlot(prices)], prices[maxSlot(prices)]

		for _, policy := range []Policy{PolicyMax, PolicyMin} {
			s := Consolidate(b, policy)
			require.True(t, s.OK)
			assert.GreaterOrEqual(t, s.Value, lo)
			assert.LessOrEqual(t, s.Value, hi)
		}
	}
}

func minSlot(prices map[timeseries.Slot]float64) timeseries.Slot {
	var best timeseries.Slot
	first := true
	for slot, price := range prices {
		if first || price < prices[best] {
			best = slot
			first = false
		}
	}
	return best
}

func maxSlot(prices map[timeseries.Slot]float64) timeseries.Slot {
	var best timeseries.Slot
	first := true
	for slot, price := range prices {
		if first || price > prices[best] {
			best = slot
			first = false
		}
	}
	return best
}
