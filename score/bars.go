package score

import (
	"math"

	"github.com/jsphweid/rstabber/model"
	"github.com/jsphweid/rstabber/sng"
	"github.com/jsphweid/rstabber/util"
)

// averageBPM computes the beat-stream-wide tempo estimate used to guess
// each bar's time signature, spec §4.5. Defaults to 120 when fewer than
// two BPM events exist.
func averageBPM(events []sng.BPMEvent) float64 {
	n := len(events)
	if n < 2 {
		return 120
	}
	t0 := float64(events[0].TimeSec)
	tn := float64(events[n-1].TimeSec)
	if tn <= t0 {
		return 120
	}
	return 60 * float64(n-1) / (tn - t0)
}

// buildBars partitions the BPM beat stream into bars: a new bar starts at
// every event whose Measure != -1, and ends where the next such event
// begins (or at songLength for the final bar). See spec §4.5.
func buildBars(events []sng.BPMEvent, songLength float64, avgBPM float64) []*model.Bar {
	if len(events) == 0 {
		return nil
	}

	var starts []int
	for i, e := range events {
		if e.Measure != -1 {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		starts = []int{0}
	}

	var bars []*model.Bar
	for bi, first := range starts {
		last := len(events)
		if bi+1 < len(starts) {
			last = starts[bi+1]
		}

		start := float64(events[first].TimeSec)
		var end float64
		if last < len(events) {
			end = float64(events[last].TimeSec)
		} else {
			end = songLength
		}

		beatTimes := make([]float64, 0, last-first+1)
		for i := first; i < last; i++ {
			beatTimes = append(beatTimes, float64(events[i].TimeSec))
		}
		beatTimes = append(beatTimes, end)

		numerator := util.Max(last-first, 1)

		denominator, bpm := guessTimeSignature(start, end, numerator, avgBPM)

		bars = append(bars, &model.Bar{
			StartSec:        start,
			EndSec:          end,
			BeatTimesSec:    beatTimes,
			TimeNumerator:   numerator,
			TimeDenominator: denominator,
			BeatsPerMinute:  bpm,
		})
	}
	return bars
}

// guessTimeSignature implements spec §4.5's denominator/BPM heuristic.
func guessTimeSignature(start, end float64, numerator int, avgBPM float64) (int, float64) {
	delta := (end - start) / float64(numerator)
	if delta <= 0 {
		return 4, avgBPM
	}
	d4 := math.Abs(avgBPM - 60/delta)
	d8 := math.Abs(avgBPM - 30/delta)
	denominator := 8
	if d4 < d8 {
		denominator = 4
	}
	bpm := math.Round((4.0 / float64(denominator)) * 60 / delta)
	return denominator, bpm
}

// findBar returns the unique bar where bar.start <= t < bar.end, or nil.
func findBar(bars []*model.Bar, t float64) *model.Bar {
	for _, b := range bars {
		if t >= b.StartSec && t < b.EndSec {
			return b
		}
	}
	return nil
}
