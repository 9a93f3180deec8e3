package psarc

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putU40BE(buf []byte, v uint64) {
	for i := 4; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
}

func writeEntry(buf *bytes.Buffer, zIndex uint32, length, offset uint64) {
	buf.Write(make([]byte, 16)) // md5, unused by the reader
	var zi [4]byte
	binary.BigEndian.PutUint32(zi[:], zIndex)
	buf.Write(zi[:])
	var lenBuf, offBuf [5]byte
	putU40BE(lenBuf[:], length)
	putU40BE(offBuf[:], offset)
	buf.Write(lenBuf[:])
	buf.Write(offBuf[:])
}

func buildTestArchive(t *testing.T) []byte {
	t.Helper()

	namesBlob := []byte("f1.bin\nf2.bin")
	f1 := []byte("Hello World")
	f2 := []byte("Second file contents, compressed.")
	f2Compressed := []byte{
		0x78, 0xda, 0x0b, 0x4e, 0x4d, 0xce, 0xcf, 0x4b, 0x51, 0x48, 0xcb, 0xcc, 0x49, 0x55, 0x00, 0xb2,
		0x4a, 0x52, 0xf3, 0x4a, 0x8a, 0x75, 0x80, 0xac, 0xdc, 0x82, 0xa2, 0xd4, 0xe2, 0xe2, 0xd4, 0x14,
		0x3d, 0x00, 0xd0, 0xe5, 0x0c, 0x5a,
	}
	require.Equal(t, 33, len(f2), "fixture length must match the compressed stream")

	const blockSize = 16
	const tocEntrySize = 30
	numFiles := 3

	// z_lens table: width 2, one raw (0) block for names, one raw block for
	// f1, one compressed block (len=38) for f2.
	var zLens bytes.Buffer
	putU16 := func(v uint16) {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], v)
		zLens.Write(b[:])
	}
	putU16(0)
	putU16(0)
	putU16(uint16(len(f2Compressed)))

	// Entry offsets depend on the TOC's own size, which is fixed once
	// num_files/toc_entry_size/z_lens width are known.
	tocSize := 32 + numFiles*tocEntrySize + zLens.Len()
	namesOffset := tocSize
	f1Offset := namesOffset + len(namesBlob)
	f2Offset := f1Offset + len(f1)

	var entries bytes.Buffer
	writeEntry(&entries, 0, uint64(len(namesBlob)), uint64(namesOffset))
	writeEntry(&entries, 1, uint64(len(f1)), uint64(f1Offset))
	writeEntry(&entries, 2, uint64(len(f2)), uint64(f2Offset))
	tocBody := append(append([]byte{}, entries.Bytes()...), zLens.Bytes()...)
	require.Equal(t, tocSize, 32+len(tocBody))

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
	writeU32(uint32(blockSize))
	writeU32(0) // unencrypted

	out.Write(tocBody)
	out.Write(namesBlob)
	out.Write(f1)
	out.Write(f2Compressed)

	return out.Bytes()
}

func TestArchiveTwoFilesRoundTrip(t *testing.T) {
	data := buildTestArchive(t)
	a, err := Open(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, a.Entries(), 2)

	assert.Equal(t, "f1.bin", a.Entries()[0].Name)
	assert.Equal(t, "f2.bin", a.Entries()[1].Name)

	r1, err := a.Open(a.Entries()[0])
	require.NoError(t, err)
	got1, err := io.ReadAll(r1)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", string(got1))

	r2, err := a.Open(a.Entries()[1])
	require.NoError(t, err)
	got2, err := io.ReadAll(r2)
	require.NoError(t, err)
	assert.Equal(t, "Second file contents, compressed.", string(got2))
}

func TestBlockLenWidth(t *testing.T) {
	assert.Equal(t, 2, blockLenWidth(16))
	assert.Equal(t, 3, blockLenWidth(65536))
	assert.Equal(t, 4, blockLenWidth(20_000_000))
}

// encryptCFB8Forward is an independent forward implementation of the
// cipher in decryptTOCCFB8, used only to build a round-trip fixture.
func encryptCFB8Forward(key, plaintext []byte) []byte {
	block, err := newAESForTest(key)
	if err != nil {
		panic(err)
	}
	register := make([]byte, 16)
	ciphertext := make([]byte, len(plaintext))
	keystream := make([]byte, 16)
	for i, p := range plaintext {
		block.Encrypt(keystream, register)
		c := p ^ keystream[0]
		ciphertext[i] = c
		copy(register, register[1:])
		register[len(register)-1] = c
	}
	return ciphertext
}

func TestTOCCFB8RoundTrip(t *testing.T) {
	plaintext := bytes.Repeat([]byte("toc-entry-payload!"), 4)
	key := testPSARCKey()
	ciphertext := encryptCFB8Forward(key, plaintext)

	got, err := decryptTOCCFB8(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}
