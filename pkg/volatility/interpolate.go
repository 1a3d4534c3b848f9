package volatility

// fillGaps fills unset positions of a chronologically ordered series in
// place and returns the number of positions filled.
//
// Leading gaps are backward-filled from the first set value; if nothing in
// the series is set, everything fills with 0.0. An interior run of L unset
// positions bounded by start and end fills position j (0-indexed within the
// run) with start + (end-start)*(j+1)/(L+1). A trailing run has no right
// bound and is held flat at the last known value.
func fillGaps(values []float64, set []bool) int {
	if len(values) == 0 {
		return 0
	}

	filled := 0

	// Backward fill for a leading gap.
	if !set[0] {
		first := 0.0
		found := false
		for i := range values {
			if set[i] {
				first = values[i]
				found = true
				break
			}
		}
		if !found {
			for i := range values {
				values[i] = 0.0
				set[i] = true
				filled++
			}
			return filled
		}
		for i := 0; i < len(values) && !set[i]; i++ {
			values[i] = first
			set[i] = true
			filled++
		}
	}

	// Linear interpolation for interior runs, flat extrapolation for a
	// trailing run.
	i := 0
	for i < len(values) {
		if set[i] {
			i++
			continue
		}
		start := values[i-1] // i > 0: the leading gap was already filled
		runStart := i
		for i < len(values) && !set[i] {
			i++
		}
		end := start
		if i < len(values) {
			end = values[i]
		}
		length := float64(i - runStart)
		for j := runStart; j < i; j++ {
			values[j] = start + (end-start)*float64(j-runStart+1)/(length+1)
			set[j] = true
			filled++
		}
	}

	return filled
}
