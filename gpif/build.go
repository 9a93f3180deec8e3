package gpif

import (
	"math"

	"github.com/jsphweid/rstabber/model"
	"github.com/jsphweid/rstabber/util"
)

// colorFor assigns a fixed display color per instrument, the same
// per-role palette idiom the teacher uses for its own track colors
// (guitar green, bass blue).
func colorFor(instrument model.Instrument) [3]int {
	if instrument == model.InstrumentBass {
		return [3]int{0, 0, 255}
	}
	return [3]int{0, 255, 0}
}

// instrumentRef names the GPIF InstrumentRef id for a track.
func instrumentRef(instrument model.Instrument) string {
	if instrument == model.InstrumentBass {
		return "Electric Bass"
	}
	return "Electric Guitar"
}

// Build assembles the GPIF arena from a fully snapped Score (spec §4.7).
// Each bar of each track contributes one Bar/Voice and a Beat per chord;
// MasterBar count and time signature follow the first track's bars.
func Build(score *model.Score) *Document {
	doc := &Document{Title: score.Title, Artist: score.Artist, Album: score.Album}

	for _, t := range score.Tracks {
		doc.Tracks = append(doc.Tracks, TrackMeta{
			Name:       t.Name,
			Instrument: instrumentRef(t.Instrument),
			Color:      colorFor(t.Instrument),
			TuningMIDI: tuningMIDI(t.Instrument, t.NumStrings, t.Tuning),
			NumStrings: t.NumStrings,
			Capo:       t.Capo,
		})
	}

	numBars := 0
	if len(score.Tracks) > 0 {
		numBars = len(score.Tracks[0].Bars)
	}

	barIDByTrackMeasure := make(map[[2]int]int)
	for ti, t := range score.Tracks {
		for m, bar := range t.Bars {
			barID := buildBar(doc, bar, t.NumStrings)
			barIDByTrackMeasure[[2]int{ti, m}] = barID
		}
	}

	for m := 0; m < numBars; m++ {
		mb := MasterBar{Numerator: 4, Denominator: 4, Tempo: 120}
		if len(score.Tracks) > 0 && m < len(score.Tracks[0].Bars) {
			first := score.Tracks[0].Bars[m]
			mb.Numerator = first.TimeNumerator
			mb.Denominator = first.TimeDenominator
			mb.Tempo = int(math.Round(first.BeatsPerMinute))
		}
		for ti := range score.Tracks {
			if barID, ok := barIDByTrackMeasure[[2]int{ti, m}]; ok {
				mb.BarIDs = append(mb.BarIDs, barID)
			}
		}
		doc.MasterBars = append(doc.MasterBars, mb)
	}

	return doc
}

// buildBar appends one track-bar's Bar/Voice/Beats/Notes/Rhythms to doc
// and returns the new Bar's id.
func buildBar(doc *Document, bar *model.Bar, numStrings int) int {
	var beatIDs []int
	for _, chord := range bar.Chords {
		beatIDs = append(beatIDs, buildBeat(doc, chord, numStrings))
	}

	voiceID := len(doc.Voices)
	doc.Voices = append(doc.Voices, Voice{BeatIDs: beatIDs})

	barID := len(doc.Bars)
	doc.Bars = append(doc.Bars, Bar{VoiceIDs: []int{voiceID}})
	return barID
}

// buildBeat appends one chord's Rhythm, Notes, and Beat to doc and
// returns the new Beat's id.
func buildBeat(doc *Document, chord *model.Chord, numStrings int) int {
	noteValue, dots := fromTicks(chord.DurationTicks)
	rhythmID := len(doc.Rhythms)
	doc.Rhythms = append(doc.Rhythms, Rhythm{NoteValue: noteValue, Dots: dots})

	var noteIDs []int
	for _, s := range util.SortedKeys(chord.Notes) {
		noteIDs = append(noteIDs, buildNote(doc, chord.Notes[s], numStrings))
	}

	beatID := len(doc.Beats)
	doc.Beats = append(doc.Beats, Beat{
		RhythmID: rhythmID,
		NoteIDs:  noteIDs,
		Rest:     len(noteIDs) == 0,
	})
	return beatID
}

// buildNote appends one decoded Note to doc and returns its id. The
// internal string index is remapped to GPIF's 1-based, high-to-low
// numbering per spec §4.7: gpif_string = num_strings − internal_string.
func buildNote(doc *Document, n *model.Note, numStrings int) int {
	note := Note{
		String:        numStrings - n.String,
		Fret:          n.Fret,
		Accent:        n.Accent,
		HammerOn:      n.HOPO,
		Tapping:       n.Tapped,
		Vibrato:       n.Vibrato,
		LeftFingering: n.LeftFingering,
		Slide:         slideFlagName(n.Slide),
	}
	for _, b := range n.BendValues {
		note.Bends = append(note.Bends, BendPoint{
			Time:  int(math.Round(b.OffsetSec * 100)),
			Value: int(math.Round(b.StepSemitones * 100)),
		})
	}

	id := len(doc.Notes)
	doc.Notes = append(doc.Notes, note)
	return id
}
