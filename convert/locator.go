package convert

import (
	"strings"

	"github.com/jsphweid/rstabber/psarc"
)

// manifestEntries returns every archive entry addressable as an
// attribute manifest: path fragment "manifests/" anywhere in the entry
// name, extension ".json", both matched after lowercasing and
// slash-normalization (spec §6).
func manifestEntries(a *psarc.Archive) []*psarc.Entry {
	var out []*psarc.Entry
	for _, e := range a.Entries() {
		name := normalize(e.Name)
		if strings.Contains(name, "manifests/") && strings.HasSuffix(name, ".json") {
			out = append(out, e)
		}
	}
	return out
}

// sngAssetName derives the base asset name to search for from an
// arrangement's song_asset URN, falling back to song_xml, per spec §6's
// SNG asset locator rule: strip everything up to and including the last
// ":", then strip a trailing ".xml" — both URNs share the same
// colon-delimited shape (e.g. "urn:application:gamesonginst_xml:foo_lead").
func sngAssetName(songAsset, songXML string) string {
	base := songAsset
	if base == "" {
		base = songXML
	}
	if i := strings.LastIndex(base, ":"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".xml")
}

// findSngEntry locates the archive entry holding an arrangement's SNG
// asset, matching by suffix "/<base>" or "/<base>.sng" per spec §6.
func findSngEntry(a *psarc.Archive, songAsset, songXML string) *psarc.Entry {
	base := normalize(sngAssetName(songAsset, songXML))
	if base == "" {
		return nil
	}
	if e := a.FindBySuffix("/" + base); e != nil {
		return e
	}
	return a.FindBySuffix("/" + base + ".sng")
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "\\", "/"))
}
