// Package constants holds wire-format constants shared across the
// PSARC/SNG/GPIF/GPX layers: tick grid, crypto keys, and sector sizes.
package constants

import "os"

// Tick grid. Whole note = 192 ticks.
const (
	TicksWhole        = 192
	TicksHalf         = 96
	TicksQuarter      = 48
	TicksEighth       = 24
	TicksSixteenth    = 12
	TicksThirtySecond = 6
	TicksSixtyFourth  = 3
)

// CanonicalTicks lists the snapper's quantization grid, longest first.
var CanonicalTicks = []int{192, 144, 96, 72, 48, 36, 32, 24, 18, 16, 12, 9, 8, 6, 4, 3}

// SnapTolerance is the maximum tick distance the rhythm snapper will round.
const SnapTolerance = 6

// PSARCKey is the fixed AES-256 key used to decrypt an encrypted PSARC TOC.
var PSARCKey = []byte{
	0xC5, 0x3D, 0xB2, 0x38, 0x70, 0xA1, 0xA2, 0xF7, 0x1C, 0xAE, 0x64, 0x06, 0x1F, 0xDD, 0x0E, 0x11,
	0x57, 0x30, 0x9D, 0xC8, 0x52, 0x04, 0xD4, 0xC5, 0xBF, 0xDF, 0x25, 0x09, 0x0D, 0xF2, 0x57, 0x2C,
}

// SNGKeyPC and SNGKeyMac are the fixed AES-256 keys for SNG payload decryption.
var (
	SNGKeyPC = []byte{
		0xCB, 0x64, 0x8D, 0xF3, 0xD1, 0x2A, 0x16, 0xBF, 0x71, 0x70, 0x14, 0x14, 0xE6, 0x96, 0x19, 0xEC,
		0x17, 0x1C, 0xCA, 0x5D, 0x2A, 0x14, 0x2E, 0x3E, 0x59, 0xDE, 0x7A, 0xDD, 0xA1, 0x8A, 0x3A, 0x30,
	}
	SNGKeyMac = []byte{
		0x98, 0x21, 0x33, 0x0E, 0x34, 0xB9, 0x1F, 0x70, 0xD0, 0xA4, 0x8C, 0xBD, 0x62, 0x59, 0x93, 0x12,
		0x69, 0x70, 0xCE, 0xA0, 0x91, 0x92, 0xC0, 0xE6, 0xCD, 0xA6, 0x76, 0xCC, 0x98, 0x38, 0x28, 0x9D,
	}
)

// PSARCMagic is the 4-byte big-endian PSARC header magic.
const PSARCMagic = 0x50534152 // "PSAR"

// PSARCCompressionZlib is the required compression tag value.
const PSARCCompressionZlib = 0x7A6C6962 // "zlib"

// PSARCFlagTOCEncrypted is bit 2 of the archive_flags header field.
const PSARCFlagTOCEncrypted = 1 << 2

// GPXSectorSize is the fixed sector size of a GPX container.
const GPXSectorSize = 0x1000

// GPX magic tags.
const (
	GPXMagicHeader    = "BCFS"
	GPXMagicDirectory = "BCFE"
	GPXMagicData      = "imrf"
)

// TempDir returns the directory the serve subcommand stages uploaded
// archives and their converted output in, overridable for tests and
// sandboxed environments.
func TempDir() string {
	if dir := os.Getenv("RSTABBER_TEMP_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// HTTPAddr returns the listen address for the `serve` subcommand.
func HTTPAddr() string {
	if addr := os.Getenv("RSTABBER_HTTP_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}
