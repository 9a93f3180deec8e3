// Package score builds the intermediate Score model (spec §3) from a
// parsed SNG document and its manifest attributes: track identity, bars
// from the BPM beat stream, and chords/notes from the highest-difficulty
// arrangement. See spec §4.5.
package score

import (
	"math"

	"github.com/jsphweid/rstabber/manifest"
	"github.com/jsphweid/rstabber/model"
	"github.com/jsphweid/rstabber/sng"
)

// BuildTrack builds one Track from one arrangement's manifest attributes
// and decrypted SNG document.
func BuildTrack(attrs manifest.Attributes2014, doc *sng.Document) *model.Track {
	instrument, path, numStrings, tuning, capo := trackIdentity(attrs, doc.Metadata)
	avgBPM := averageBPM(doc.BPM)
	bars := buildBars(doc.BPM, float64(doc.Metadata.SongLength), avgBPM)

	name := attrs.ArrangementName
	if name == "" {
		name = attrs.SongName
	}

	track := &model.Track{
		Name:           name,
		Instrument:     instrument,
		Path:           path,
		Bonus:          attrs.Bonus,
		NumStrings:     numStrings,
		Tuning:         tuning,
		Capo:           capo,
		ChordTemplates: chordTemplates(doc.ChordTemplates),
		Bars:           bars,
		AverageBPM:     avgBPM,
	}

	arr := highestDifficulty(doc.Arrangements)
	if arr == nil {
		return track
	}

	for _, group := range groupNotesByTime(arr.Notes) {
		t := float64(group[0].TimeSec)
		bar := findBar(bars, t)
		if bar == nil {
			continue
		}
		chord := buildChord(group, track.ChordTemplates, doc.ChordNotes)
		if chord == nil {
			continue
		}
		raw := bar.DurationFor(chord.StartSec, chord.EndSec-chord.StartSec)
		chord.DurationTicks = int(math.Round(raw * 48))
		bar.Chords = append(bar.Chords, chord)
	}

	return track
}

func highestDifficulty(arrangements []sng.Arrangement) *sng.Arrangement {
	var best *sng.Arrangement
	for i := range arrangements {
		if best == nil || arrangements[i].Difficulty > best.Difficulty {
			best = &arrangements[i]
		}
	}
	return best
}
