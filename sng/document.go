package sng

import (
	"bytes"
	"fmt"

	"github.com/jsphweid/rstabber/endian"
)

// Document is the parsed SNG structural section list (spec §3): the
// sections Score building reads directly, plus the raw section order
// preserved by reading (and discarding) every section in between.
type Document struct {
	BPM           []BPMEvent
	ChordTemplates []ChordTemplate
	ChordNotes    []ChordNotesEntry
	Arrangements  []Arrangement
	Metadata      Metadata
}

// Parse consumes the fixed-order section sequence from decrypted,
// inflated SNG payload bytes. Any short read is fatal, per spec §4.4.
func Parse(payload []byte) (*Document, error) {
	lr := endian.NewLittleReader(bytes.NewReader(payload))
	doc := &Document{}

	var err error
	if doc.BPM, err = readBPM(lr); err != nil {
		return nil, fmt.Errorf("sng: BPM section: %w", err)
	}
	if err = skipSection(lr, phraseRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: Phrase section: %w", err)
	}
	if doc.ChordTemplates, err = readChordTemplates(lr); err != nil {
		return nil, fmt.Errorf("sng: Chord section: %w", err)
	}
	if doc.ChordNotes, err = readChordNotes(lr); err != nil {
		return nil, fmt.Errorf("sng: ChordNotes section: %w", err)
	}
	if err = skipSection(lr, vocalRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: Vocal section: %w", err)
	}
	if err = skipSection(lr, symbolsHeaderRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: SymbolsHeader section: %w", err)
	}
	if err = skipSection(lr, symbolsTextureRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: SymbolsTexture section: %w", err)
	}
	if err = skipSection(lr, symbolDefinitionRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: SymbolDefinition section: %w", err)
	}
	if err = skipSection(lr, phraseIterationRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: PhraseIteration section: %w", err)
	}
	if err = skipSection(lr, phraseExtraInfoRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: PhraseExtraInfo section: %w", err)
	}
	if err = skipSection(lr, nLinkedDifficultyRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: NLinkedDifficulty section: %w", err)
	}
	if err = skipSection(lr, actionRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: Action section: %w", err)
	}
	if err = skipSection(lr, eventRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: Event section: %w", err)
	}
	if err = skipSection(lr, toneRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: Tone section: %w", err)
	}
	if err = skipSection(lr, dnaRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: DNA section: %w", err)
	}
	if err = skipSection(lr, sectionRecordWidth); err != nil {
		return nil, fmt.Errorf("sng: Section section: %w", err)
	}
	if doc.Arrangements, err = readArrangements(lr); err != nil {
		return nil, fmt.Errorf("sng: Arrangement section: %w", err)
	}
	if doc.Metadata, err = readMetadata(lr); err != nil {
		return nil, fmt.Errorf("sng: Metadata section: %w", err)
	}
	return doc, nil
}

// skipSection reads a 32-bit count and discards count*width bytes.
func skipSection(lr *endian.LittleReader, width int) error {
	count, err := lr.U32()
	if err != nil {
		return err
	}
	return lr.Skip(int(count) * width)
}

func readBPM(lr *endian.LittleReader) ([]BPMEvent, error) {
	count, err := lr.U32()
	if err != nil {
		return nil, err
	}
	events := make([]BPMEvent, count)
	for i := range events {
		if events[i].TimeSec, err = lr.F32(); err != nil {
			return nil, err
		}
		if events[i].Measure, err = lr.I32(); err != nil {
			return nil, err
		}
		if events[i].Beat, err = lr.I32(); err != nil {
			return nil, err
		}
		if events[i].PhraseIteration, err = lr.I32(); err != nil {
			return nil, err
		}
		if events[i].Mask, err = lr.I32(); err != nil {
			return nil, err
		}
	}
	return events, nil
}

func readChordTemplates(lr *endian.LittleReader) ([]ChordTemplate, error) {
	count, err := lr.U32()
	if err != nil {
		return nil, err
	}
	out := make([]ChordTemplate, count)
	for i := range out {
		if out[i].Mask, err = lr.I32(); err != nil {
			return nil, err
		}
		if out[i].Name, err = lr.ASCIIZ(32); err != nil {
			return nil, err
		}
		for s := 0; s < 6; s++ {
			if out[i].Frets[s], err = lr.I8(); err != nil {
				return nil, err
			}
		}
		for s := 0; s < 6; s++ {
			if out[i].Fingers[s], err = lr.I8(); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func readBendTrack(lr *endian.LittleReader, n int) ([]BendPoint32, error) {
	out := make([]BendPoint32, n)
	var err error
	for i := range out {
		if out[i].TimeSec, err = lr.F32(); err != nil {
			return nil, err
		}
		if out[i].Step, err = lr.F32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readChordNotes(lr *endian.LittleReader) ([]ChordNotesEntry, error) {
	count, err := lr.U32()
	if err != nil {
		return nil, err
	}
	out := make([]ChordNotesEntry, count)
	for i := range out {
		e := &out[i]
		for s := 0; s < 6; s++ {
			if e.NoteMask[s], err = lr.I32(); err != nil {
				return nil, err
			}
		}
		for s := 0; s < 6; s++ {
			if e.SlideTo[s], err = lr.I8(); err != nil {
				return nil, err
			}
		}
		for s := 0; s < 6; s++ {
			if e.SlideUnpitchTo[s], err = lr.I8(); err != nil {
				return nil, err
			}
		}
		for s := 0; s < 6; s++ {
			if e.Vibrato[s], err = lr.I8(); err != nil {
				return nil, err
			}
		}
		for s := 0; s < 6; s++ {
			if e.Sustain[s], err = lr.F32(); err != nil {
				return nil, err
			}
		}
		for s := 0; s < 6; s++ {
			track, err := readBendTrack(lr, 32)
			if err != nil {
				return nil, err
			}
			copy(e.BendData[s][:], track)
		}
	}
	return out, nil
}

func readNotes(lr *endian.LittleReader) ([]NoteRecord, error) {
	count, err := lr.U32()
	if err != nil {
		return nil, err
	}
	out := make([]NoteRecord, count)
	for i := range out {
		n := &out[i]
		if n.TimeSec, err = lr.F32(); err != nil {
			return nil, err
		}
		if n.String, err = lr.I8(); err != nil {
			return nil, err
		}
		if n.Fret, err = lr.I8(); err != nil {
			return nil, err
		}
		if n.Tap, err = lr.I8(); err != nil {
			return nil, err
		}
		if n.Slap, err = lr.I8(); err != nil {
			return nil, err
		}
		if n.Pluck, err = lr.I8(); err != nil {
			return nil, err
		}
		if n.SlideTo, err = lr.I8(); err != nil {
			return nil, err
		}
		if n.SlideUnpitchTo, err = lr.I8(); err != nil {
			return nil, err
		}
		if n.LeftHand, err = lr.I8(); err != nil {
			return nil, err
		}
		if n.Sustain, err = lr.F32(); err != nil {
			return nil, err
		}
		if n.NoteMask, err = lr.I32(); err != nil {
			return nil, err
		}
		if n.ChordID, err = lr.I32(); err != nil {
			return nil, err
		}
		if n.ChordNotesID, err = lr.I32(); err != nil {
			return nil, err
		}
		bendCount, err := lr.I32()
		if err != nil {
			return nil, err
		}
		track, err := readBendTrack(lr, 32)
		if err != nil {
			return nil, err
		}
		if int(bendCount) >= 0 && int(bendCount) <= len(track) {
			track = track[:bendCount]
		}
		n.BendData = track
	}
	return out, nil
}

func readArrangements(lr *endian.LittleReader) ([]Arrangement, error) {
	count, err := lr.U32()
	if err != nil {
		return nil, err
	}
	out := make([]Arrangement, count)
	for i := range out {
		a := &out[i]
		if a.Difficulty, err = lr.I32(); err != nil {
			return nil, err
		}
		if a.AverageBPM, err = lr.F32(); err != nil {
			return nil, err
		}
		if err = skipSection(lr, anchorRecordWidth); err != nil {
			return nil, err
		}
		if err = skipSection(lr, anchorExtensionRecordWidth); err != nil {
			return nil, err
		}
		if err = skipSection(lr, fingerprintRecordWidth); err != nil {
			return nil, err
		}
		if err = skipSection(lr, fingerprintRecordWidth); err != nil {
			return nil, err
		}
		if a.Notes, err = readNotes(lr); err != nil {
			return nil, err
		}
		if err = skipSection(lr, phraseIterationCountWidth); err != nil {
			return nil, err
		}
		if err = skipSection(lr, phraseIterationCountWidth); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readMetadata(lr *endian.LittleReader) (Metadata, error) {
	var m Metadata
	count, err := lr.U32()
	if err != nil {
		return m, err
	}
	if count == 0 {
		return m, nil
	}
	if m.StringCount, err = lr.I32(); err != nil {
		return m, err
	}
	for i := 0; i < 6; i++ {
		if m.Tuning[i], err = lr.I32(); err != nil {
			return m, err
		}
	}
	if m.CapoFret, err = lr.I8(); err != nil {
		return m, err
	}
	if m.SongLength, err = lr.F32(); err != nil {
		return m, err
	}
	for i := uint32(1); i < count; i++ {
		if err := lr.Skip(metadataWidth); err != nil {
			return m, err
		}
	}
	return m, nil
}
