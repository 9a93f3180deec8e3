package gpif

import "github.com/jsphweid/rstabber/model"

// fromTicks derives a GPIF note value and augmentation-dot count from a
// chord's snapped duration, per spec §4.7's threshold table.
func fromTicks(duration int) (string, int) {
	switch {
	case duration >= 192:
		return "Whole", 0
	case duration >= 144:
		return "Half", 1
	case duration >= 96:
		return "Half", 0
	case duration >= 72:
		return "Quarter", 1
	case duration >= 48:
		return "Quarter", 0
	case duration >= 36:
		return "Eighth", 1
	case duration >= 24:
		return "Eighth", 0
	case duration >= 18:
		return "16th", 1
	case duration >= 12:
		return "16th", 0
	case duration >= 8:
		return "32nd", 0
	default:
		return "64th", 0
	}
}

// slideFlagName maps a decoded Slide to the GPIF slide flag name, empty
// when the note carries no slide.
func slideFlagName(s model.Slide) string {
	switch s {
	case model.SlideToNext:
		return "SHIFT"
	case model.SlideUnpitchUp:
		return "SLIDE_OUT_UP"
	case model.SlideUnpitchDown:
		return "SLIDE_OUT_DOWN"
	default:
		return ""
	}
}
