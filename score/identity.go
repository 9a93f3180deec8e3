package score

import (
	"github.com/jsphweid/rstabber/manifest"
	"github.com/jsphweid/rstabber/model"
	"github.com/jsphweid/rstabber/sng"
)

// trackIdentity derives the fixed, per-arrangement Track fields from the
// manifest attributes and the SNG metadata record. See spec §4.5.
func trackIdentity(attrs manifest.Attributes2014, meta sng.Metadata) (model.Instrument, model.Path, int, [6]int, int) {
	instrument := model.InstrumentGuitar
	if attrs.ArrangementType == 3 {
		instrument = model.InstrumentBass
	}

	var path model.Path
	switch attrs.ArrangementType {
	case 0:
		path = model.PathLead
	case 1, 2:
		path = model.PathRhythm
	case 3:
		path = model.PathBass
	default:
		path = model.PathLead
	}

	numStrings := int(meta.StringCount)
	if numStrings < 4 {
		numStrings = 4
	}

	var tuning [6]int
	for i := 0; i < 6; i++ {
		tuning[i] = int(meta.Tuning[i])
	}

	capo := int(meta.CapoFret)
	if meta.CapoFret == -1 { // 0xFF read as int8
		capo = 0
	}

	return instrument, path, numStrings, tuning, capo
}

// chordTemplates converts the SNG chord-template table to the model's
// representation. SNG fret/finger bytes already decode 0xFF to -1 as an
// int8, so no extra masking is needed beyond widening to int.
func chordTemplates(templates []sng.ChordTemplate) map[int]model.ChordTemplate {
	out := make(map[int]model.ChordTemplate, len(templates))
	for i, t := range templates {
		var ct model.ChordTemplate
		ct.Name = t.Name
		for s := 0; s < 6; s++ {
			ct.Frets[s] = int(t.Frets[s])
			ct.Fingers[s] = int(t.Fingers[s])
		}
		out[i] = ct
	}
	return out
}
