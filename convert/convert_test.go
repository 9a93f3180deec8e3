package convert

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/rstabber/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// putU40BE writes v as a 40-bit big-endian integer into buf[0:5], matching
// the PSARC TOC's length/offset encoding (see psarc/archive_test.go's buildTestArchive, which this
// fixture builder mirrors).
func putU40BE(buf []byte, v uint64) {
	for i := 4; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
}

func writeTOCEntry(buf *bytes.Buffer, zIndex uint32, length, offset uint64) {
	buf.Write(make([]byte, 16))
	var zi [4]byte
	binary.BigEndian.PutUint32(zi[:], zIndex)
	buf.Write(zi[:])
	var lenBuf, offBuf [5]byte
	putU40BE(lenBuf[:], length)
	putU40BE(offBuf[:], offset)
	buf.Write(lenBuf[:])
	buf.Write(offBuf[:])
}

// buildPSARC assembles a minimal unencrypted, uncompressed PSARC archive
// holding the given (name, contents) files, in the same TOC layout as
// psarc/archive_test.go's fixture.
func buildPSARC(t *testing.T, files map[string][]byte) []byte {
	t.Helper()

	var names []string
	for name := range files {
		names = append(names, name)
	}
	// deterministic order: manifest first, then asset, matches map insertion
	// order isn't guaranteed, so sort explicitly.
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if names[j] < names[i] {
				names[i], names[j] = names[j], names[i]
			}
		}
	}

	namesBlob := []byte(joinLines(names))
	numFiles := len(names) + 1

	var zLens bytes.Buffer
	putU16 := func(v uint16) {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], v)
		zLens.Write(b[:])
	}
	putU16(0) // names blob is raw
	for range names {
		putU16(0)
	}

	const tocEntrySize = 30
	tocSize := 32 + numFiles*tocEntrySize + zLens.Len()

	var entries bytes.Buffer
	offset := tocSize
	writeTOCEntry(&entries, 0, uint64(len(namesBlob)), uint64(offset))
	offset += len(namesBlob)
	for i, name := range names {
		content := files[name]
		writeTOCEntry(&entries, uint32(i+1), uint64(len(content)), uint64(offset))
		offset += len(content)
	}

	var out bytes.Buffer
	writeU32 := func(v uint32) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v)
		out.Write(b[:])
	}
	writeU32(0x50534152) // "PSAR"
	writeU32(0x00010004)
	writeU32(0x7A6C6962) // "zlib"
	writeU32(uint32(tocSize))
	writeU32(uint32(tocEntrySize))
	writeU32(uint32(numFiles))
	writeU32(4096) // block size; every fixture file fits in one raw block
	writeU32(0)    // unencrypted

	out.Write(entries.Bytes())
	out.Write(zLens.Bytes())
	out.Write(namesBlob)
	for _, name := range names {
		out.Write(files[name])
	}

	return out.Bytes()
}

func joinLines(names []string) string {
	var buf bytes.Buffer
	for i, n := range names {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(n)
	}
	return buf.String()
}

// buildManifestJSON wraps one arrangement's attributes in the
// {"Entries":{outer:{inner:attrs}}} shape manifest.Parse expects.
func buildManifestJSON(t *testing.T, songName, arrangementName string, arrangementType int, songAsset string) []byte {
	t.Helper()
	return buildManifestJSONWithXML(t, songName, arrangementName, arrangementType, songAsset, "")
}

// buildManifestJSONWithXML is buildManifestJSON with an explicit song_xml,
// for exercising the SNG asset locator's fallback path.
func buildManifestJSONWithXML(t *testing.T, songName, arrangementName string, arrangementType int, songAsset, songXML string) []byte {
	t.Helper()
	doc := map[string]map[string]map[string]interface{}{
		"Entries": {
			"entry-0": {
				"attrs-0": map[string]interface{}{
					"SongName":        songName,
					"ArtistName":      "Test Artist",
					"AlbumName":       "Test Album",
					"SongYear":        2014,
					"SongLength":      2.0,
					"ArrangementName": arrangementName,
					"ArrangementType": arrangementType,
					"Tuning": map[string]int{
						"String0": 0, "String1": 0, "String2": 0,
						"String3": 0, "String4": 0, "String5": 0,
					},
					"CapoFret":  0,
					"SongAsset": songAsset,
					"SongXml":   songXML,
				},
			},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

// buildSNGFixture assembles a minimal unencrypted SNG section sequence
// with one BPM event, no chords, and one arrangement holding a single
// fretted note, matching the section layout sng.Parse walks.
func buildSNGFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf.Write(b[:])
	}
	wf := func(v float32) { w(math.Float32bits(v)) }

	// BPM: one event at t=0; with fewer than two events the average BPM
	// falls back to 120.
	w(1)
	wf(0.0)
	w(0)
	w(0)
	w(0)
	w(0)

	w(0) // Phrase: count=0

	w(0) // Chord: count=0
	w(0) // ChordNotes: count=0

	for i := 0; i < 12; i++ {
		w(0) // Vocal..Section, all empty
	}

	// Arrangement: count=1.
	w(1)
	w(0)        // difficulty
	wf(120.0)   // average_bpm
	w(0)        // anchors
	w(0)        // anchor extensions
	w(0)        // fingerprint 1
	w(0)        // fingerprint 2
	// Notes: count=1.
	w(1)
	wf(0.0)             // time_sec
	buf.WriteByte(0)    // string
	buf.WriteByte(3)    // fret
	buf.WriteByte(0)    // tap
	buf.WriteByte(0)    // slap
	buf.WriteByte(0)    // pluck
	buf.WriteByte(0xFF) // slide_to
	buf.WriteByte(0xFF) // slide_unpitch_to
	buf.WriteByte(0xFF) // left_hand
	wf(1.0)             // sustain
	w(0)                // note_mask
	w(^uint32(0))
	w(^uint32(0))
	w(0) // bend_count
	buf.Write(make([]byte, 32*8))
	w(0)
	w(0)

	// Metadata: count=1.
	w(1)
	w(6)
	for i := 0; i < 6; i++ {
		w(0)
	}
	buf.WriteByte(0xFF)
	wf(2.0)

	return buf.Bytes()
}

func TestConvertNoArrangementsIsFatal(t *testing.T) {
	archiveBytes := buildPSARC(t, map[string][]byte{})
	dir := t.TempDir()
	in := filepath.Join(dir, "song.psarc")
	require.NoError(t, os.WriteFile(in, archiveBytes, 0o644))

	_, err := Convert(in, filepath.Join(dir, "song.gpx"), nil)
	require.Error(t, err)
	assert.Equal(t, "No manifest data found", err.Error())
}

func TestConvertLeadArrangementProducesGPX(t *testing.T) {
	manifestJSON := buildManifestJSON(t, "Test Song", "Lead", 0, "urn:rsarchive:song:leadtrack")
	sngData := buildSNGFixture(t)

	archiveBytes := buildPSARC(t, map[string][]byte{
		"manifests/song_lead.json": manifestJSON,
		"songs/arr/leadtrack.sng":  sngData,
	})

	dir := t.TempDir()
	in := filepath.Join(dir, "song.psarc")
	out := filepath.Join(dir, "song.gpx")
	require.NoError(t, os.WriteFile(in, archiveBytes, 0o644))

	var stages []string
	result, err := Convert(in, out, func(stage string, percent int) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.TrackCount)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, out, result.OutputPath)
	assert.Equal(t, []string{"Reading PSARC", "Detecting rhythm", "Exporting GPX", "Done"}, stages)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}

func TestConvertVocalsArrangementIsFilteredOut(t *testing.T) {
	manifestJSON := buildManifestJSON(t, "Test Song", "Vocals", 4, "urn:rsarchive:song:vocalstrack")

	archiveBytes := buildPSARC(t, map[string][]byte{
		"manifests/song_vocals.json": manifestJSON,
	})

	dir := t.TempDir()
	in := filepath.Join(dir, "song.psarc")
	require.NoError(t, os.WriteFile(in, archiveBytes, 0o644))

	_, err := Convert(in, filepath.Join(dir, "song.gpx"), nil)
	require.Error(t, err)
	assert.Equal(t, "No manifest data found", err.Error())
}

func TestConvertMissingSngAssetWarnsAndSkips(t *testing.T) {
	manifestJSON := buildManifestJSON(t, "Test Song", "Lead", 0, "urn:rsarchive:song:nosuchtrack")

	archiveBytes := buildPSARC(t, map[string][]byte{
		"manifests/song_lead.json": manifestJSON,
	})

	dir := t.TempDir()
	in := filepath.Join(dir, "song.psarc")
	require.NoError(t, os.WriteFile(in, archiveBytes, 0o644))

	_, err := Convert(in, filepath.Join(dir, "song.gpx"), nil)
	require.Error(t, err)
	assert.Equal(t, "No manifest data found", err.Error())
}

func TestSngAssetNameFallsBackToSongXML(t *testing.T) {
	assert.Equal(t, "leadtrack", sngAssetName("", "leadtrack.xml"))
	assert.Equal(t, "leadtrack", sngAssetName("urn:rsarchive:song:leadtrack", ""))
	assert.Equal(t, "foo_lead", sngAssetName("", "urn:application:gamesonginst_xml:foo_lead"))
}

func TestSortTracksByPathThenBonusThenName(t *testing.T) {
	tracks := []*model.Track{
		{Name: "Zebra Rhythm", Path: model.PathRhythm},
		{Name: "Bass", Path: model.PathBass},
		{Name: "Bonus Lead", Path: model.PathLead, Bonus: true},
		{Name: "Apple Lead", Path: model.PathLead},
	}
	sortTracks(tracks)

	var names []string
	for _, track := range tracks {
		names = append(names, track.Name)
	}
	assert.Equal(t, []string{"Apple Lead", "Bonus Lead", "Zebra Rhythm", "Bass"}, names)
}

func TestConvertSngFallbackViaSongXMLURN(t *testing.T) {
	manifestJSON := buildManifestJSONWithXML(t, "Test Song", "Lead", 0, "", "urn:application:gamesonginst_xml:foo_lead")

	archiveBytes := buildPSARC(t, map[string][]byte{
		"manifests/song_lead.json": manifestJSON,
		"songs/arr/foo_lead.sng":   buildSNGFixture(t),
	})

	dir := t.TempDir()
	in := filepath.Join(dir, "song.psarc")
	require.NoError(t, os.WriteFile(in, archiveBytes, 0o644))

	result, err := Convert(in, filepath.Join(dir, "song.gpx"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TrackCount)
	assert.Empty(t, result.Warnings)
}
