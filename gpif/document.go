// Package gpif builds the GPIF arena (spec §4.7) from a model.Score and
// serializes it to the Guitar Pro GPIF XML dialect.
package gpif

// Document is the flat, id-addressed arena every Guitar Pro GPIF XML
// section is generated from. Each slice's index is that section's id —
// Bars[3] is referenced elsewhere as bar id 3, and so on.
type Document struct {
	Title, Artist, Album string
	Tracks     []TrackMeta
	MasterBars []MasterBar
	Bars       []Bar
	Voices     []Voice
	Beats      []Beat
	Notes      []Note
	Rhythms    []Rhythm
}

// TrackMeta is one GPIF <Track>.
type TrackMeta struct {
	Name       string
	Instrument string // GP InstrumentRef string, e.g. "Electric Guitar"
	Color      [3]int
	TuningMIDI [6]int // high to low, 0 for unused strings on a <6 string track
	NumStrings int
	Capo       int
}

// MasterBar is one measure shared across all tracks: a time signature, the
// tempo at that measure (from the first track's bar, per spec §4.7), and
// the per-track bar ids occupying that measure.
type MasterBar struct {
	Numerator, Denominator int
	Tempo                  int
	BarIDs                 []int
}

// Bar is one measure of one track: a list of voice ids (always one).
type Bar struct {
	VoiceIDs []int
}

// Voice is a sequence of beat ids.
type Voice struct {
	BeatIDs []int
}

// Beat is one rhythmic slot: a rhythm id and its note ids. The optional
// <Chord> reference in the GPIF grammar is never emitted here — the arena
// has no diagram vector for it to address, and the grammar marks it
// optional for exactly this case.
type Beat struct {
	RhythmID int
	NoteIDs  []int
	Rest     bool
}

// Note is one fretted string event.
type Note struct {
	String, Fret  int
	Accent        bool
	HammerOn      bool
	Tapping       bool
	Vibrato       bool
	LeftFingering int // -1 when absent
	Slide         string // GP slide flag name, "" when absent
	Bends         []BendPoint
}

// BendPoint is one <Point time value> inside a note's bend curve.
type BendPoint struct {
	Time, Value int
}

// Rhythm is a note value plus optional augmentation dot.
type Rhythm struct {
	NoteValue string
	Dots      int
}
