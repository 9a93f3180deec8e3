package score

import (
	"github.com/jsphweid/rstabber/model"
	"github.com/jsphweid/rstabber/sng"
)

// decodeBends converts a fixed-size bend track into the sparse bend-point
// list a Note carries: only non-zero-time slots are significant (spec
// §4.5 "for each non-zero-time bend point").
func decodeBends(track []sng.BendPoint32, tNote float64) []model.Bend {
	var out []model.Bend
	for _, p := range track {
		if p.TimeSec == 0 {
			continue
		}
		rel := float64(p.TimeSec) - tNote
		if rel < 0 {
			rel = 0
		}
		out = append(out, model.Bend{OffsetSec: rel, StepSemitones: float64(p.Step)})
	}
	return out
}

// decodeSlide picks a model.Slide and target fret from a note's mask and
// technique fields. slide_to present means a pitched shift to that fret;
// otherwise slide_unpitch_to present means an unpitched slide, with
// direction inferred from whether the target fret is above or below the
// note's own fret.
func decodeSlide(fret int, slideTo, slideUnpitchTo int8) (model.Slide, int) {
	if techniquePresent(slideTo) {
		target := int(slideTo) & 0xFF
		return model.SlideToNext, target
	}
	if techniquePresent(slideUnpitchTo) {
		target := int(slideUnpitchTo) & 0xFF
		if target >= fret {
			return model.SlideUnpitchUp, target
		}
		return model.SlideUnpitchDown, target
	}
	return model.SlideNone, -1
}

// decodeSingleNote builds one Note from a raw NoteRecord using the
// single-note mask-bit table in spec §4.5.
func decodeSingleNote(n sng.NoteRecord) *model.Note {
	mask := n.NoteMask
	slide, target := decodeSlide(int(n.Fret), n.SlideTo, n.SlideUnpitchTo)

	leftFingering := -1
	if techniquePresent(n.LeftHand) {
		leftFingering = int(n.LeftHand) & 0xFF
	}

	return &model.Note{
		String:        int(n.String),
		Fret:          int(n.Fret),
		SustainSec:    float64(n.Sustain),
		PalmMuted:     mask&maskPalmMute != 0,
		Muted:         mask&maskMute != 0,
		HOPO:          mask&(maskHammerOn|maskPullOff) != 0,
		Vibrato:       mask&maskVibrato != 0,
		LinkNext:      mask&maskLinkNext != 0,
		Accent:        mask&maskAccent != 0,
		Harmonic:      mask&maskHarmonic != 0,
		PinchHarmonic: mask&maskPinchOrPluck != 0,
		Tremolo:       mask&maskTremolo != 0,
		Tapped:        techniquePresent(n.Tap),
		Slapped:       techniquePresent(n.Slap) || mask&maskSlap != 0,
		Popped:        techniquePresent(n.Pluck),
		LeftFingering: leftFingering,
		Slide:         slide,
		SlideTarget:   target,
		BendValues:    decodeBends(n.BendData, float64(n.TimeSec)),
	}
}

// decodeChordNoteString builds one string's Note from per-string
// ChordNotesEntry data plus its fret from the chord template, per spec
// §4.5 "chord with per-string data".
func decodeChordNoteString(string_ int, fret int, entry sng.ChordNotesEntry, t float64) *model.Note {
	mask := entry.NoteMask[string_]
	slide, target := decodeSlide(fret, entry.SlideTo[string_], entry.SlideUnpitchTo[string_])

	return &model.Note{
		String:        string_,
		Fret:          fret,
		SustainSec:    float64(entry.Sustain[string_]),
		PalmMuted:     mask&maskPalmMute != 0,
		Muted:         mask&maskMute != 0,
		HOPO:          mask&(maskHammerOn|maskPullOff) != 0,
		Vibrato:       mask&maskVibrato != 0 || entry.Vibrato[string_] != 0,
		LinkNext:      mask&maskLinkNext != 0,
		Accent:        mask&maskAccent != 0,
		Harmonic:      mask&maskHarmonic != 0,
		PinchHarmonic: false, // spec §9(d): chord-note context ignores this bit
		Tremolo:       mask&maskTremolo != 0,
		LeftFingering: -1,
		Slide:         slide,
		SlideTarget:   target,
		BendValues:    decodeBends(entry.BendData[string_][:], t),
	}
}

// buildChord decodes one time-grouped set of NoteRecords into a Chord,
// synthesizing per-string notes from the chord-notes table when the
// group is a single record that references an entry in range, otherwise
// decoding each record as a single note.
func buildChord(group []sng.NoteRecord, templates map[int]model.ChordTemplate, chordNotes []sng.ChordNotesEntry) *model.Chord {
	if len(group) == 0 {
		return nil
	}
	t := float64(group[0].TimeSec)
	chordID := -1
	if group[0].ChordID != -1 {
		chordID = int(group[0].ChordID)
	}

	chord := &model.Chord{
		StartSec: t,
		ChordID:  chordID,
		Notes:    make(map[int]*model.Note),
	}

	chordNotesID := group[0].ChordNotesID
	if chordNotesID >= 0 && int(chordNotesID) < len(chordNotes) && len(group) == 1 {
		entry := chordNotes[chordNotesID]
		template, hasTemplate := templates[chordID]
		for s := 0; s < 6; s++ {
			fret := -1
			if hasTemplate {
				fret = template.Frets[s]
			}
			if fret == -1 && entry.NoteMask[s] == 0 {
				continue
			}
			chord.Notes[s] = decodeChordNoteString(s, fret, entry, t)
		}
		if len(chord.Notes) == 0 {
			// No per-string data synthesized; fall back to the raw record.
			n := decodeSingleNote(group[0])
			chord.Notes[n.String] = n
		}
	} else {
		for _, rec := range group {
			n := decodeSingleNote(rec)
			chord.Notes[n.String] = n
		}
	}

	sustainMax := 0.0
	for _, n := range chord.Notes {
		if n.SustainSec > sustainMax {
			sustainMax = n.SustainSec
		}
	}
	if sustainMax < 0.01 {
		sustainMax = 0.01
	}
	chord.EndSec = chord.StartSec + sustainMax
	return chord
}

// groupNotesByTime buckets an arrangement's notes by time_sec, returning
// groups in ascending time order.
func groupNotesByTime(notes []sng.NoteRecord) [][]sng.NoteRecord {
	order := make([]float32, 0)
	byTime := make(map[float32][]sng.NoteRecord)
	for _, n := range notes {
		if _, ok := byTime[n.TimeSec]; !ok {
			order = append(order, n.TimeSec)
		}
		byTime[n.TimeSec] = append(byTime[n.TimeSec], n)
	}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if order[j] < order[i] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	groups := make([][]sng.NoteRecord, 0, len(order))
	for _, t := range order {
		groups = append(groups, byTime[t])
	}
	return groups
}
