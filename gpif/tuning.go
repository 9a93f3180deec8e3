package gpif

import "github.com/jsphweid/rstabber/model"

// standardGuitar and standardBass are open-string MIDI note numbers,
// lowest string first, for the common 6-string guitar and 4-string bass
// tunings. Extra strings extend the pattern by a perfect fourth (5
// semitones) below the lowest entry; a track with fewer strings than the
// table takes the table's highest-pitched entries.
var (
	standardGuitar = []int{40, 45, 50, 55, 59, 64} // E2 A2 D3 G3 B3 E4
	standardBass   = []int{28, 33, 38, 43}         // E1 A1 D2 G2
)

// openStringMIDI returns numStrings open-string MIDI note numbers, lowest
// string first, for the given instrument.
func openStringMIDI(instrument model.Instrument, numStrings int) []int {
	base := standardGuitar
	if instrument == model.InstrumentBass {
		base = standardBass
	}

	notes := make([]int, len(base))
	copy(notes, base)
	for len(notes) < numStrings {
		notes = append([]int{notes[0] - 5}, notes...)
	}
	if len(notes) > numStrings {
		notes = notes[len(notes)-numStrings:]
	}
	return notes
}

// tuningMIDI combines a track's per-string semitone offsets with the
// instrument's open-string base, then reverses low-to-high into the
// high-to-low order GPIF expects (spec §4.7 "Tuning is emitted
// high-to-low").
func tuningMIDI(instrument model.Instrument, numStrings int, tuning [6]int) [6]int {
	base := openStringMIDI(instrument, numStrings)

	var out [6]int
	for i := 0; i < numStrings && i < 6; i++ {
		out[i] = base[i] + tuning[i]
	}

	var reversed [6]int
	for i := 0; i < numStrings && i < 6; i++ {
		reversed[i] = out[numStrings-1-i]
	}
	return reversed
}
