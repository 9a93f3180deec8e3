// Package sng decrypts and parses Rocksmith's binary song asset: an
// 8-byte envelope wrapping a counter-stepped AES-256/CFB-128 ciphertext,
// which in turn wraps a zlib-compressed, fixed-order sequence of typed
// structural sections. See spec §4.4.
package sng

import (
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"fmt"
	"io"

	"github.com/jsphweid/rstabber/constants"
	"github.com/jsphweid/rstabber/endian"
)

// Platform selects which of the two fixed SNG payload keys to decrypt
// with. The envelope's platform_flags bytes are skipped unparsed: per
// spec open question (a) they carry no documented meaning. Callers that
// know their source platform should set this directly.
type Platform int

const (
	PlatformPC Platform = iota
	PlatformMac
)

func (p Platform) key() []byte {
	if p == PlatformMac {
		return constants.SNGKeyMac
	}
	return constants.SNGKeyPC
}

const envelopeSize = 8

// Decrypt validates the envelope, decrypts the payload with platform's
// key, and inflates it, returning the raw little-endian section bytes
// ready for Parse. If the envelope's magic low byte does not match
// 0x4A, data is returned unchanged (spec §4.4: "treated as unencrypted").
func Decrypt(data []byte, platform Platform) ([]byte, error) {
	if len(data) < envelopeSize {
		return nil, fmt.Errorf("sng: envelope truncated")
	}
	magic := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	if byte(magic) != 0x4A {
		return data, nil
	}

	iv := make([]byte, 16)
	copy(iv, data[8:min(24, len(data))])
	if len(data) < 24 {
		return nil, fmt.Errorf("sng: envelope truncated")
	}

	ciphertext := data[24:]
	plain, err := decryptCounterCFB128(platform.key(), iv, ciphertext)
	if err != nil {
		return nil, err
	}

	return inflate(plain)
}

// decryptCounterCFB128 decrypts each 16-byte block as plain = cipher XOR
// AES_ECB(iv_k), then advances iv_k by treating it as a big-endian
// 128-bit integer and adding one. The IV never takes feedback from the
// ciphertext, so this is not standard CFB-8 or CFB-128.
func decryptCounterCFB128(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sng: building AES cipher: %w", err)
	}

	ivK := make([]byte, 16)
	copy(ivK, iv)
	eK := make([]byte, 16)

	plain := make([]byte, len(ciphertext))
	for off := 0; off < len(ciphertext); off += 16 {
		block.Encrypt(eK, ivK)
		n := 16
		if off+n > len(ciphertext) {
			n = len(ciphertext) - off
		}
		for i := 0; i < n; i++ {
			plain[off+i] = ciphertext[off+i] ^ eK[i]
		}
		incrementBE128(ivK)
	}
	return plain, nil
}

func incrementBE128(iv []byte) {
	for i := len(iv) - 1; i >= 0; i-- {
		iv[i]++
		if iv[i] != 0 {
			return
		}
	}
}

func inflate(plain []byte) ([]byte, error) {
	lr := endian.NewLittleReader(bytes.NewReader(plain))
	uncompressedSize, err := lr.U32()
	if err != nil {
		return nil, fmt.Errorf("sng: reading uncompressed_size: %w", err)
	}
	compressedSize, err := lr.U32()
	if err != nil {
		return nil, fmt.Errorf("sng: reading compressed_size: %w", err)
	}

	remaining := plain[8:]
	n := int(compressedSize)
	if n > len(remaining) {
		n = len(remaining)
	}

	zr, err := zlib.NewReader(bytes.NewReader(remaining[:n]))
	if err != nil {
		return nil, fmt.Errorf("sng: opening zlib stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, int64(uncompressedSize)+1<<20))
	if err != nil {
		return nil, fmt.Errorf("sng: inflating payload: %w", err)
	}
	return out, nil
}
