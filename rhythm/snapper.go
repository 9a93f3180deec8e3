// Package rhythm quantizes a Bar's raw chord durations to the canonical
// musical tick grid, in place. See spec §4.6.
package rhythm

import (
	"github.com/jsphweid/rstabber/constants"
	"github.com/jsphweid/rstabber/model"
	"github.com/jsphweid/rstabber/util"
)

// Snap quantizes every chord in bar to a canonical duration and clamps
// the final chord so the bar's total never exceeds its own capacity.
func Snap(bar *model.Bar) {
	capacity := bar.DurationTicks()
	for _, c := range bar.Chords {
		c.DurationTicks = snapOne(c.DurationTicks, capacity)
	}
	clampFinal(bar.Chords, capacity)
}

// snapOne finds the canonical tick value closest to raw, restricted to
// values not exceeding capacity, and accepts it if within tolerance.
func snapOne(raw, capacity int) int {
	if raw <= 0 {
		return smallestCanonical()
	}

	best := -1
	bestDist := -1
	for _, c := range constants.CanonicalTicks {
		if c > capacity {
			continue
		}
		dist := abs(raw - c)
		if best == -1 || dist < bestDist {
			best = c
			bestDist = dist
		}
	}
	if best == -1 {
		return util.Clamp(raw, 3, capacity)
	}
	if abs(raw-best) <= constants.SnapTolerance {
		return best
	}
	return util.Clamp(raw, 3, capacity)
}

func smallestCanonical() int {
	smallest := constants.CanonicalTicks[0]
	for _, c := range constants.CanonicalTicks[1:] {
		smallest = util.Min(smallest, c)
	}
	return smallest
}

// clampFinal enforces spec §4.6 step 2: the last chord is cut down to
// whatever capacity remains when it is longer than that (a shorter last
// chord is left as is), or shrinks to the smallest canonical value if the
// other chords already fill the bar.
func clampFinal(chords []*model.Chord, capacity int) {
	if len(chords) == 0 {
		return
	}
	durations := make([]int, len(chords)-1)
	for i, c := range chords[:len(chords)-1] {
		durations[i] = c.DurationTicks
	}
	used := int(util.Sum(durations))
	last := chords[len(chords)-1]

	if used >= capacity {
		last.DurationTicks = smallestCanonical()
		return
	}
	remaining := capacity - used
	if last.DurationTicks > remaining {
		last.DurationTicks = remaining
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
