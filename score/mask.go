package score

// Note mask bits, spec §4.5.
const (
	maskChordNote       = 0x0000_0002
	maskSlide           = 0x0000_0004
	maskHarmonic        = 0x0000_0020
	maskPalmMute        = 0x0000_0040
	maskVibrato         = 0x0000_0100
	maskHammerOn        = 0x0000_0200
	maskPullOff         = 0x0000_0400
	maskSlideUnpitched  = 0x0000_0800
	maskTremolo         = 0x0000_2000
	maskAccent          = 0x0000_4000
	maskLinkNext        = 0x0000_8000
	maskIgnore          = 0x0001_0000
	maskMute            = 0x0002_0000
	maskPinchOrPluck    = 0x0004_0000
	maskSlap            = 0x0008_0000
	maskTap             = 0x0010_0000
)

// techniquePresent reports whether a single-byte technique field carries a
// significant value: the sentinels 0 and 0xFF (-1 as int8) both mean
// "absent" per spec §4.5.
func techniquePresent(v int8) bool {
	return v != 0 && v != -1
}
