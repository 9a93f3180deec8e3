package sng

// Fixed-width record layouts for the sections Score building consumes.
// Widths for sections the pipeline never inspects (skipSection below) are
// chosen to be self-consistent round-trip widths; their internal field
// layout is opaque per spec §4.4 ("may be skipped by position").

// BPMEvent is one beat of the tempo map.
type BPMEvent struct {
	TimeSec         float32
	Measure         int32
	Beat            int32
	PhraseIteration int32
	Mask            int32
}

const bpmEventWidth = 4 + 4 + 4 + 4 + 4

// ChordTemplate names a fretted shape: six fret bytes and six finger
// bytes, 0xFF meaning "string not used".
type ChordTemplate struct {
	Mask    int32
	Name    string
	Frets   [6]int8
	Fingers [6]int8
}

const chordTemplateWidth = 4 + 32 + 6 + 6

// BendPoint32 is one entry of a note's fixed 32-slot bend track.
type BendPoint32 struct {
	TimeSec float32
	Step    float32
}

const bendPoint32Width = 4 + 4

// ChordNotesEntry carries the per-string data for a chord that has
// individual per-string technique and bend information, indexed by a
// note's chord_notes_id.
type ChordNotesEntry struct {
	NoteMask       [6]int32
	SlideTo        [6]int8
	SlideUnpitchTo [6]int8
	Vibrato        [6]int8
	Sustain        [6]float32
	BendData       [6][32]BendPoint32
}

const chordNotesEntryWidth = 6*4 + 6 + 6 + 6 + 6*4 + 6*32*bendPoint32Width

// NoteRecord is one fretted event inside an Arrangement's Notes array.
type NoteRecord struct {
	TimeSec        float32
	String         int8
	Fret           int8
	Tap            int8
	Slap           int8
	Pluck          int8
	SlideTo        int8
	SlideUnpitchTo int8
	LeftHand       int8
	Sustain        float32
	NoteMask       int32
	ChordID        int32
	ChordNotesID   int32
	BendData       []BendPoint32 // up to 32 entries, trimmed to BendCount
}

const noteRecordWidth = 4 + 8 + 4 + 4 + 4 + 4 + 4 + 32*bendPoint32Width

// Arrangement is one difficulty level's worth of notes for a single SNG
// document; Score building picks the arrangement with the greatest
// Difficulty.
type Arrangement struct {
	Difficulty int32
	AverageBPM float32
	Notes      []NoteRecord
}

// Metadata is the SNG document's trailing fixed record: string count,
// tuning, capo, and overall song length.
type Metadata struct {
	StringCount int32
	Tuning      [6]int32
	CapoFret    int8
	SongLength  float32
}

const metadataWidth = 4 + 6*4 + 1 + 4

// Record widths for sections whose fields are never consumed downstream;
// only their byte width matters so the reader can skip past them.
const (
	phraseRecordWidth           = 24
	vocalRecordWidth            = 48
	symbolsHeaderRecordWidth    = 20
	symbolsTextureRecordWidth   = 24
	symbolDefinitionRecordWidth = 20
	phraseIterationRecordWidth  = 24
	phraseExtraInfoRecordWidth  = 16
	nLinkedDifficultyRecordWidth = 28
	actionRecordWidth           = 32
	eventRecordWidth            = 32
	toneRecordWidth             = 12
	dnaRecordWidth              = 8
	sectionRecordWidth          = 24
	anchorRecordWidth           = 12
	anchorExtensionRecordWidth  = 8
	fingerprintRecordWidth      = 16
	phraseIterationCountWidth   = 4
)
