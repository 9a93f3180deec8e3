package sng

import (
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encryptCounterCFB128(key, iv, plaintext []byte) []byte {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	ivK := make([]byte, 16)
	copy(ivK, iv)
	eK := make([]byte, 16)

	out := make([]byte, len(plaintext))
	for off := 0; off < len(plaintext); off += 16 {
		block.Encrypt(eK, ivK)
		n := 16
		if off+n > len(plaintext) {
			n = len(plaintext) - off
		}
		for i := 0; i < n; i++ {
			out[off+i] = plaintext[off+i] ^ eK[i]
		}
		incrementBE128(ivK)
	}
	return out
}

func TestCounterCFB128RoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	iv := make([]byte, 16)
	for i := range iv {
		iv[i] = byte(i * 7)
	}
	plaintext := bytes.Repeat([]byte("sng-payload-bytes"), 10)

	ciphertext := encryptCounterCFB128(key, iv, plaintext)
	got, err := decryptCounterCFB128(key, iv, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestCounterStepAdvancesIVByBlockCount(t *testing.T) {
	iv := make([]byte, 16)
	iv[15] = 0xFE

	incrementBE128(iv)
	assert.Equal(t, byte(0xFF), iv[15])

	incrementBE128(iv)
	assert.Equal(t, byte(0x00), iv[15])
	assert.Equal(t, byte(0x01), iv[14])
}

func buildMinimalFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf.Write(b[:])
	}
	wf := func(v float32) { w(math.Float32bits(v)) }

	// BPM: count=1, one event.
	w(1)
	wf(0.0)
	w(uint32(0)) // measure
	w(uint32(0)) // beat
	w(uint32(0)) // phrase iteration
	w(uint32(0)) // mask

	// Phrase: count=1, skipped opaque record.
	w(1)
	buf.Write(make([]byte, phraseRecordWidth))

	// Chord: count=0.
	w(0)
	// ChordNotes: count=0.
	w(0)
	// Vocal, SymbolsHeader, SymbolsTexture, SymbolDefinition,
	// PhraseIteration, PhraseExtraInfo, NLinkedDifficulty, Action, Event,
	// Tone, DNA, Section: all empty.
	for i := 0; i < 12; i++ {
		w(0)
	}

	// Arrangement: count=1.
	w(1)
	w(uint32(5)) // difficulty
	wf(120.0)    // average_bpm
	w(0)         // anchors
	w(0)         // anchor extensions
	w(0)         // fingerprint 1
	w(0)         // fingerprint 2
	// Notes: count=1.
	w(1)
	wf(0.0)                     // time_sec
	buf.WriteByte(0)            // string
	buf.WriteByte(3)            // fret
	buf.WriteByte(0)            // tap
	buf.WriteByte(0)            // slap
	buf.WriteByte(0)            // pluck
	buf.WriteByte(0xFF)         // slide_to
	buf.WriteByte(0xFF)         // slide_unpitch_to
	buf.WriteByte(0xFF)         // left_hand
	wf(1.0)                     // sustain
	w(0)                        // note_mask
	w(^uint32(0))        // chord_id
	w(^uint32(0))        // chord_notes_id
	w(0)                        // bend_count
	buf.Write(make([]byte, 32*bendPoint32Width))
	w(0) // phrase iteration note counts (array 1)
	w(0) // phrase iteration note counts (array 2)

	// Metadata: count=1.
	w(1)
	w(6)         // string_count
	for i := 0; i < 6; i++ {
		w(0) // tuning
	}
	buf.WriteByte(0xFF) // capo_fret: absent
	wf(2.0)              // song_length

	return buf.Bytes()
}

func TestParseMinimalFixture(t *testing.T) {
	payload := buildMinimalFixture(t)
	doc, err := Parse(payload)
	require.NoError(t, err)

	require.Len(t, doc.BPM, 1)
	assert.Equal(t, float32(0.0), doc.BPM[0].TimeSec)
	assert.Equal(t, int32(0), doc.BPM[0].Measure)

	require.Len(t, doc.ChordTemplates, 0)
	require.Len(t, doc.ChordNotes, 0)

	require.Len(t, doc.Arrangements, 1)
	arr := doc.Arrangements[0]
	assert.Equal(t, int32(5), arr.Difficulty)
	assert.InDelta(t, 120.0, arr.AverageBPM, 1e-6)
	require.Len(t, arr.Notes, 1)
	assert.Equal(t, int8(3), arr.Notes[0].Fret)
	assert.Equal(t, int32(-1), arr.Notes[0].ChordID)

	assert.Equal(t, int32(6), doc.Metadata.StringCount)
	assert.Equal(t, int8(-1), doc.Metadata.CapoFret)
	assert.InDelta(t, 2.0, doc.Metadata.SongLength, 1e-6)
}

func TestSNGEnvelopeNonEncryptedPassthrough(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00, 1, 2, 3, 4, 5, 6}
	out, err := Decrypt(data, PlatformPC)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestSNGEnvelopeFullRoundTrip(t *testing.T) {
	payload := buildMinimalFixture(t)

	var compressed bytes.Buffer
	zw, err := zlib.NewWriterLevel(&compressed, zlib.BestCompression)
	require.NoError(t, err)
	_, err = zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var inner bytes.Buffer
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	inner.Write(lenBuf[:])
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(compressed.Len()))
	inner.Write(lenBuf[:])
	inner.Write(compressed.Bytes())

	iv := make([]byte, 16)
	ciphertext := encryptCounterCFB128(PlatformPC.key(), iv, inner.Bytes())

	var envelope bytes.Buffer
	var magic [4]byte
	binary.LittleEndian.PutUint32(magic[:], 0x0000004A)
	envelope.Write(magic[:])
	envelope.Write([]byte{0, 0, 0, 0}) // platform_flags, discarded
	envelope.Write(iv)
	envelope.Write(ciphertext)

	got, err := Decrypt(envelope.Bytes(), PlatformPC)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
