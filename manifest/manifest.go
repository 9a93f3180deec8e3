// Package manifest parses a Rocksmith attributes manifest: a JSON
// document shaped {"Entries": {outerKey: {innerKey: attrsObject}}},
// flattened into one Attributes2014 per leaf. See spec §4.3.
package manifest

import (
	"encoding/json"
	"fmt"
)

// Attributes2014 is one arrangement's flat attribute record, limited to
// the fields the score builder consumes (spec §3).
type Attributes2014 struct {
	SongName        string
	ArtistName      string
	AlbumName       string
	SongYear        int
	SongLength      float64
	ArrangementName string
	ArrangementType int
	Tuning          [6]int
	CapoFret        int
	SongAsset       string
	SongXML         string
	Bonus           bool
}

type document struct {
	Entries map[string]map[string]json.RawMessage `json:"Entries"`
}

type rawAttrs struct {
	SongName        string  `json:"SongName"`
	ArtistName      string  `json:"ArtistName"`
	AlbumName       string  `json:"AlbumName"`
	SongYear        int     `json:"SongYear"`
	SongLength      float64 `json:"SongLength"`
	ArrangementName string  `json:"ArrangementName"`
	ArrangementType int     `json:"ArrangementType"`
	Tuning          *struct {
		String0 int `json:"String0"`
		String1 int `json:"String1"`
		String2 int `json:"String2"`
		String3 int `json:"String3"`
		String4 int `json:"String4"`
		String5 int `json:"String5"`
	} `json:"Tuning"`
	CapoFret  int    `json:"CapoFret"`
	SongAsset string `json:"SongAsset"`
	SongXML   string `json:"SongXml"`

	ArrangementProperties *struct {
		BonusArr int `json:"BonusArr"`
	} `json:"ArrangementProperties"`
}

// Parse flattens raw manifest JSON into one Attributes2014 per leaf
// object. Unknown fields are ignored (json.Unmarshal's default
// behavior); missing string/int fields default to their zero value.
func Parse(data []byte) ([]Attributes2014, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	var out []Attributes2014
	for _, outer := range doc.Entries {
		for _, raw := range outer {
			var a rawAttrs
			if err := json.Unmarshal(raw, &a); err != nil {
				continue
			}
			attrs := Attributes2014{
				SongName:        a.SongName,
				ArtistName:      a.ArtistName,
				AlbumName:       a.AlbumName,
				SongYear:        a.SongYear,
				SongLength:      a.SongLength,
				ArrangementName: a.ArrangementName,
				ArrangementType: a.ArrangementType,
				CapoFret:        a.CapoFret,
				SongAsset:       a.SongAsset,
				SongXML:         a.SongXML,
			}
			if a.ArrangementProperties != nil {
				attrs.Bonus = a.ArrangementProperties.BonusArr != 0
			}
			if a.Tuning != nil {
				attrs.Tuning = [6]int{
					a.Tuning.String0, a.Tuning.String1, a.Tuning.String2,
					a.Tuning.String3, a.Tuning.String4, a.Tuning.String5,
				}
			}
			out = append(out, attrs)
		}
	}
	return out, nil
}
