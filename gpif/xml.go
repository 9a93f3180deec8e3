package gpif

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// idList is a GPIF child-id reference list: a space-separated run of
// integers inside one element, e.g. <Bars>0 1 2</Bars>. Plain struct tags
// can't express a dynamically-sized space-joined body, so it carries its
// own MarshalXML — the same shape of problem leafo-songtool's
// ToneLibBackingBars solves with a custom MarshalXML, here for dynamic
// content rather than dynamic tag names.
type idList []int

func (l idList) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	parts := make([]string, len(l))
	for i, id := range l {
		parts[i] = strconv.Itoa(id)
	}
	if err := e.EncodeToken(xml.CharData([]byte(strings.Join(parts, " ")))); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

type flag struct{}

type gpifXML struct {
	XMLName     xml.Name       `xml:"GPIF"`
	GPVersion   string         `xml:"GPVersion"`
	Score       scoreXML       `xml:"Score"`
	MasterTrack masterTrackXML `xml:"MasterTrack"`
	Tracks      tracksXML      `xml:"Tracks"`
	MasterBars  masterBarsXML  `xml:"MasterBars"`
	Bars        barsXML        `xml:"Bars"`
	Voices      voicesXML      `xml:"Voices"`
	Beats       beatsXML       `xml:"Beats"`
	Notes       notesXML       `xml:"Notes"`
	Rhythms     rhythmsXML     `xml:"Rhythms"`
}

type scoreXML struct {
	Title  string `xml:"Title"`
	Artist string `xml:"Artist,omitempty"`
	Album  string `xml:"Album,omitempty"`
}

type masterTrackXML struct {
	Automations automationsXML `xml:"Automations"`
}

type automationsXML struct {
	Automation []automationXML `xml:"Automation"`
}

type automationXML struct {
	Type  string  `xml:"Type"`
	Bar   int     `xml:"Bar"`
	Value float64 `xml:"Value"`
}

type tracksXML struct {
	Track []trackXML `xml:"Track"`
}

type trackXML struct {
	ID            int              `xml:"id,attr"`
	Name          string           `xml:"Name"`
	ShortName     string           `xml:"ShortName"`
	Color         colorXML         `xml:"Color"`
	InstrumentRef instrumentRefXML `xml:"InstrumentRef"`
	Tuning        tuningXML        `xml:"Tuning"`
	Capo          int              `xml:"Capo"`
}

type colorXML struct {
	Red   int `xml:"Red"`
	Green int `xml:"Green"`
	Blue  int `xml:"Blue"`
}

type instrumentRefXML struct {
	ID string `xml:"id,attr"`
}

type tuningXML struct {
	MIDI string `xml:"midi,attr"`
}

type masterBarsXML struct {
	MasterBar []masterBarXML `xml:"MasterBar"`
}

type masterBarXML struct {
	Time string `xml:"Time"`
	Bars idList `xml:"Bars"`
}

type barsXML struct {
	Bar []barXML `xml:"Bar"`
}

type barXML struct {
	ID     int    `xml:"id,attr"`
	Voices idList `xml:"Voices"`
}

type voicesXML struct {
	Voice []voiceXML `xml:"Voice"`
}

type voiceXML struct {
	ID    int    `xml:"id,attr"`
	Beats idList `xml:"Beats"`
}

type beatsXML struct {
	Beat []beatXML `xml:"Beat"`
}

type beatXML struct {
	ID     int    `xml:"id,attr"`
	Rhythm int    `xml:"Rhythm"`
	Notes  idList `xml:"Notes,omitempty"`
}

type notesXML struct {
	Note []noteXML `xml:"Note"`
}

type noteXML struct {
	ID         int           `xml:"id,attr"`
	Properties propertiesXML `xml:"Properties"`
	Bend       *bendXML      `xml:"Bend,omitempty"`
	Accent     *flag         `xml:"Accent,omitempty"`
	HammerOn   *flag         `xml:"HammerOn,omitempty"`
	Tapping    *flag         `xml:"Tapping,omitempty"`
	Vibrato    *flag         `xml:"Vibrato,omitempty"`
}

type propertiesXML struct {
	Property []propertyXML `xml:"Property"`
}

type propertyXML struct {
	Name   string `xml:"name,attr"`
	Number *int   `xml:"Number,omitempty"`
	Flags  string `xml:"Flags,omitempty"`
}

type bendXML struct {
	Points pointsXML `xml:"Points"`
}

type pointsXML struct {
	Point []pointXML `xml:"Point"`
}

type pointXML struct {
	Time  int `xml:"time,attr"`
	Value int `xml:"value,attr"`
}

type rhythmsXML struct {
	Rhythm []rhythmXML `xml:"Rhythm"`
}

type rhythmXML struct {
	ID              int  `xml:"id,attr"`
	NoteValue       string `xml:"NoteValue"`
	AugmentationDot *int `xml:"AugmentationDot,omitempty"`
}

func intPtr(v int) *int { return &v }

// toXML converts the arena into its literal XML shape (spec §4.7).
func toXML(doc *Document) *gpifXML {
	out := &gpifXML{
		GPVersion: "7",
		Score:     scoreXML{Title: doc.Title, Artist: doc.Artist, Album: doc.Album},
	}

	for i, mb := range doc.MasterBars {
		out.MasterTrack.Automations.Automation = append(out.MasterTrack.Automations.Automation, automationXML{
			Type:  "Tempo",
			Bar:   i,
			Value: float64(mb.Tempo),
		})
	}

	for i, t := range doc.Tracks {
		out.Tracks.Track = append(out.Tracks.Track, trackXML{
			ID:            i,
			Name:          t.Name,
			ShortName:     t.Name,
			Color:         colorXML{Red: t.Color[0], Green: t.Color[1], Blue: t.Color[2]},
			InstrumentRef: instrumentRefXML{ID: t.Instrument},
			Tuning:        tuningXML{MIDI: tuningMIDIString(t.TuningMIDI[:t.NumStrings])},
			Capo:          t.Capo,
		})
	}

	for _, mb := range doc.MasterBars {
		out.MasterBars.MasterBar = append(out.MasterBars.MasterBar, masterBarXML{
			Time: fmt.Sprintf("%d/%d", mb.Numerator, mb.Denominator),
			Bars: idList(mb.BarIDs),
		})
	}

	for i, b := range doc.Bars {
		out.Bars.Bar = append(out.Bars.Bar, barXML{ID: i, Voices: idList(b.VoiceIDs)})
	}

	for i, v := range doc.Voices {
		out.Voices.Voice = append(out.Voices.Voice, voiceXML{ID: i, Beats: idList(v.BeatIDs)})
	}

	for i, b := range doc.Beats {
		out.Beats.Beat = append(out.Beats.Beat, beatXML{ID: i, Rhythm: b.RhythmID, Notes: idList(b.NoteIDs)})
	}

	for i, n := range doc.Notes {
		out.Notes.Note = append(out.Notes.Note, noteToXML(i, n))
	}

	for i, r := range doc.Rhythms {
		rx := rhythmXML{ID: i, NoteValue: r.NoteValue}
		if r.Dots > 0 {
			rx.AugmentationDot = intPtr(r.Dots)
		}
		out.Rhythms.Rhythm = append(out.Rhythms.Rhythm, rx)
	}

	return out
}

func noteToXML(id int, n Note) noteXML {
	props := []propertyXML{
		{Name: "String", Number: intPtr(n.String)},
		{Name: "Fret", Number: intPtr(n.Fret)},
	}
	if n.LeftFingering >= 0 {
		props = append(props, propertyXML{Name: "LeftHandFinger", Number: intPtr(n.LeftFingering)})
	}
	if n.Slide != "" {
		props = append(props, propertyXML{Name: "Slide", Flags: n.Slide})
	}

	nx := noteXML{ID: id, Properties: propertiesXML{Property: props}}
	if len(n.Bends) > 0 {
		points := make([]pointXML, len(n.Bends))
		for i, b := range n.Bends {
			points[i] = pointXML{Time: b.Time, Value: b.Value}
		}
		nx.Bend = &bendXML{Points: pointsXML{Point: points}}
	}
	if n.Accent {
		nx.Accent = &flag{}
	}
	if n.HammerOn {
		nx.HammerOn = &flag{}
	}
	if n.Tapping {
		nx.Tapping = &flag{}
	}
	if n.Vibrato {
		nx.Vibrato = &flag{}
	}
	return nx
}

func tuningMIDIString(notes []int) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}

// Marshal serializes the arena to indented, UTF-8 GPIF XML (spec §4.7).
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(toXML(doc)); err != nil {
		return nil, fmt.Errorf("encode GPIF XML: %w", err)
	}
	return buf.Bytes(), nil
}
