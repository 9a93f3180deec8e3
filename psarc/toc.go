package psarc

import (
	"crypto/aes"
	"fmt"

	"github.com/jsphweid/rstabber/constants"
)

// decryptTOCCFB8 decrypts ciphertext in-place-equivalent AES-256/CFB-8 (one
// byte of feedback per step) using the fixed PSARC key and a 16-byte zero
// IV, per spec §4.2/§6. This is NOT the same as cipher.NewCFBDecrypter,
// which only implements full-block (CFB-128) feedback; PSARC's TOC cipher
// needs the 1-byte-segment variant, built by hand from the raw block
// cipher.
func decryptTOCCFB8(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(constants.PSARCKey)
	if err != nil {
		return nil, fmt.Errorf("psarc: building AES cipher: %w", err)
	}

	register := make([]byte, aes.BlockSize) // zero IV
	plaintext := make([]byte, len(ciphertext))
	keystream := make([]byte, aes.BlockSize)

	for i, c := range ciphertext {
		block.Encrypt(keystream, register)
		p := c ^ keystream[0]
		plaintext[i] = p

		copy(register, register[1:])
		register[len(register)-1] = c
	}
	return plaintext, nil
}

// entryRaw is one 30-byte TOC entry before names are resolved.
type entryRaw struct {
	MD5    [16]byte
	ZIndex uint32
	Length uint64
	Offset uint64
}

// tocLayout is the parsed, decrypted TOC body (everything after the
// 32-byte header): the raw entry table and the shared compressed-block
// length table.
type tocLayout struct {
	Entries []entryRaw
	ZLens   []uint64
}

func parseTOC(body []byte, h header) (tocLayout, error) {
	pos := 0
	read := func(n int) ([]byte, error) {
		if pos+n > len(body) {
			return nil, fmt.Errorf("psarc: TOC truncated")
		}
		b := body[pos : pos+n]
		pos += n
		return b, nil
	}
	readBE := func(n int) (uint64, error) {
		b, err := read(n)
		if err != nil {
			return 0, err
		}
		var v uint64
		for _, x := range b {
			v = v<<8 | uint64(x)
		}
		return v, nil
	}

	var layout tocLayout
	const fixedWidth = 16 + 4 + 5 + 5 // md5 + z_index + length(u40) + offset(u40)
	padding := int(h.TOCEntrySize) - fixedWidth
	if padding < 0 {
		padding = 0
	}

	for i := uint32(0); i < h.NumFiles; i++ {
		var e entryRaw
		md5, err := read(16)
		if err != nil {
			return layout, err
		}
		copy(e.MD5[:], md5)

		zIndex, err := readBE(4)
		if err != nil {
			return layout, err
		}
		e.ZIndex = uint32(zIndex)

		if e.Length, err = readBE(5); err != nil {
			return layout, err
		}
		if e.Offset, err = readBE(5); err != nil {
			return layout, err
		}
		if padding > 0 {
			if _, err := read(padding); err != nil {
				return layout, err
			}
		}
		layout.Entries = append(layout.Entries, e)
	}

	width := blockLenWidth(h.BlockSizeBytes)
	tail := len(body) - pos
	if h.tocEncrypted() {
		tail -= 32 // trailing encryption-tag allowance
	}
	if tail < 0 {
		tail = 0
	}
	numZLens := tail / width
	for i := 0; i < numZLens; i++ {
		v, err := readBE(width)
		if err != nil {
			return layout, err
		}
		layout.ZLens = append(layout.ZLens, v)
	}
	return layout, nil
}
