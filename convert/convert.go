// Package convert orchestrates the full PSARC-to-GPX pipeline: PSARC
// open, manifest parsing, SNG decode, Score building, rhythm snapping,
// GPIF serialization, and GPX container write. See spec §6, §7.
package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jsphweid/rstabber/gpif"
	"github.com/jsphweid/rstabber/gpx"
	"github.com/jsphweid/rstabber/manifest"
	"github.com/jsphweid/rstabber/model"
	"github.com/jsphweid/rstabber/psarc"
	"github.com/jsphweid/rstabber/rhythm"
	"github.com/jsphweid/rstabber/score"
	"github.com/jsphweid/rstabber/sng"
)

// arrangementTypeLead, arrangementTypeBass, etc. are the manifest's
// closed set of arrangement_type codes, spec §6. 4 and 5 (vocals,
// show-lights) never produce a Track.
const (
	arrangementTypeVocals     = 4
	arrangementTypeShowLights = 5
)

// Convert runs the full pipeline against the PSARC file at inputPath,
// writing a .gpx container to outputPath. progress, if non-nil, is
// invoked synchronously at each of the four stage boundaries in spec §6;
// it also receives a debounced "Detecting rhythm" call from a timer
// goroutine (see arrangementProgress), which may arrive after Convert
// has returned.
func Convert(inputPath, outputPath string, progress model.ProgressFunc) (*model.ConvertResult, error) {
	report := func(stage string, percent int) {
		if progress != nil {
			progress(stage, percent)
		}
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("convert: open input: %w", err)
	}
	defer f.Close()

	archive, err := psarc.Open(f)
	if err != nil {
		return nil, fmt.Errorf("convert: open PSARC: %w", err)
	}
	report("Reading PSARC", 10)

	var warnings []model.Warning
	allAttrs := parseManifests(archive, &warnings)

	score, warnings := buildScore(archive, allAttrs, warnings, arrangementProgress(progress))
	report("Detecting rhythm", 50)
	if len(score.Tracks) == 0 {
		return nil, errors.New("No manifest data found")
	}
	sortTracks(score.Tracks)

	for _, t := range score.Tracks {
		for _, bar := range t.Bars {
			rhythm.Snap(bar)
		}
	}

	doc := gpif.Build(score)
	report("Exporting GPX", 80)

	xmlBytes, err := gpif.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert: serialize GPIF: %w", err)
	}

	if err := gpx.Write(xmlBytes, outputPath); err != nil {
		return nil, fmt.Errorf("convert: write GPX: %w", err)
	}
	report("Done", 100)

	return &model.ConvertResult{
		OutputPath: outputPath,
		TrackCount: len(score.Tracks),
		Warnings:   warnings,
	}, nil
}

// parseManifests reads and flattens every manifest entry in the archive,
// appending an InvalidManifest warning and skipping any entry that fails
// to parse rather than aborting the pipeline (spec §7).
func parseManifests(archive *psarc.Archive, warnings *[]model.Warning) []manifest.Attributes2014 {
	var all []manifest.Attributes2014
	for _, e := range manifestEntries(archive) {
		r, err := archive.Open(e)
		if err != nil {
			*warnings = append(*warnings, model.Warning{Stage: "InvalidManifest", Name: e.Name, Err: err})
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			*warnings = append(*warnings, model.Warning{Stage: "InvalidManifest", Name: e.Name, Err: err})
			continue
		}
		attrs, err := manifest.Parse(data)
		if err != nil {
			*warnings = append(*warnings, model.Warning{Stage: "InvalidManifest", Name: e.Name, Err: err})
			continue
		}
		all = append(all, attrs...)
	}
	return all
}

// buildScore decodes each arrangement's SNG asset and builds its Track,
// skipping vocals/show-lights arrangements outright and warning-and-
// skipping any arrangement whose SNG asset is missing or fails to
// decode (spec §7's MissingSngAsset/ArrangementDecodeError rows).
func buildScore(archive *psarc.Archive, allAttrs []manifest.Attributes2014, warnings []model.Warning, onArrangement func()) (*model.Score, []model.Warning) {
	built := &model.Score{}

	for _, attrs := range allAttrs {
		if attrs.ArrangementType == arrangementTypeVocals || attrs.ArrangementType == arrangementTypeShowLights {
			continue
		}
		onArrangement()

		if built.Title == "" {
			built.Title = attrs.SongName
			built.Artist = attrs.ArtistName
			built.Album = attrs.AlbumName
			built.Year = attrs.SongYear
		}

		entry := findSngEntry(archive, attrs.SongAsset, attrs.SongXML)
		if entry == nil {
			warnings = append(warnings, model.Warning{Stage: "MissingSngAsset", Name: attrs.ArrangementName, Err: errors.New("no archive entry matched the SNG asset")})
			continue
		}

		r, err := archive.Open(entry)
		if err != nil {
			warnings = append(warnings, model.Warning{Stage: "ArrangementDecodeError", Name: attrs.ArrangementName, Err: err})
			continue
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			warnings = append(warnings, model.Warning{Stage: "ArrangementDecodeError", Name: attrs.ArrangementName, Err: err})
			continue
		}

		plain, err := sng.Decrypt(raw, sng.PlatformPC)
		if err != nil {
			warnings = append(warnings, model.Warning{Stage: "ArrangementDecodeError", Name: attrs.ArrangementName, Err: err})
			continue
		}
		doc, err := sng.Parse(plain)
		if err != nil {
			warnings = append(warnings, model.Warning{Stage: "ArrangementDecodeError", Name: attrs.ArrangementName, Err: err})
			continue
		}

		built.Tracks = append(built.Tracks, score.BuildTrack(attrs, doc))
	}

	return built, warnings
}

// sortTracks orders tracks by (path, bonus, name) so MasterBar tempo/time
// signature (driven by the first track) and the emitted <Tracks> order are
// stable regardless of manifest parse order.
func sortTracks(tracks []*model.Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Bonus != b.Bonus {
			return !a.Bonus && b.Bonus
		}
		return a.Name < b.Name
	})
}
