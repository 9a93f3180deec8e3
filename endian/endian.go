// Package endian implements primitive-width readers over a byte source in
// both big-endian (PSARC headers, TOC) and little-endian (SNG
// section bodies, post-decryption) byte order. Both variants track their
// own read position and fail with ErrUnexpectedEOF on a short read.
package endian

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrUnexpectedEOF is returned whenever a read runs off the end of the
// source mid-value.
var ErrUnexpectedEOF = errors.New("endian: unexpected EOF")

// BigReader reads big-endian primitives from an io.Reader, tracking how
// many bytes it has consumed.
type BigReader struct {
	r   io.Reader
	pos int64
}

// NewBigReader wraps r for big-endian reads.
func NewBigReader(r io.Reader) *BigReader { return &BigReader{r: r} }

// Pos returns the number of bytes consumed so far.
func (b *BigReader) Pos() int64 { return b.pos }

func (b *BigReader) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(b.r, buf)
	b.pos += int64(read)
	if err != nil {
		return nil, ErrUnexpectedEOF
	}
	return buf, nil
}

// Bytes reads n raw bytes.
func (b *BigReader) Bytes(n int) ([]byte, error) { return b.read(n) }

// Skip advances the source by n bytes without returning them. Forward
// only, as the underlying readers here are not generally seekable.
func (b *BigReader) Skip(n int) error {
	_, err := b.read(n)
	return err
}

// U8 reads one unsigned byte.
func (b *BigReader) U8() (uint8, error) {
	buf, err := b.read(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// U16 reads a big-endian uint16.
func (b *BigReader) U16() (uint16, error) {
	buf, err := b.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

// U24 reads a big-endian 24-bit unsigned integer, most-significant byte
// first, into a 64-bit accumulator.
func (b *BigReader) U24() (uint64, error) {
	buf, err := b.read(3)
	if err != nil {
		return 0, err
	}
	return accumulateBE(buf), nil
}

// U32 reads a big-endian uint32.
func (b *BigReader) U32() (uint32, error) {
	buf, err := b.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// U40 reads a big-endian 40-bit unsigned integer, most-significant byte
// first, into a 64-bit accumulator.
func (b *BigReader) U40() (uint64, error) {
	buf, err := b.read(5)
	if err != nil {
		return 0, err
	}
	return accumulateBE(buf), nil
}

// U64 reads a big-endian uint64.
func (b *BigReader) U64() (uint64, error) {
	buf, err := b.read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

// I16 reads a big-endian signed 16-bit integer.
func (b *BigReader) I16() (int16, error) {
	v, err := b.U16()
	return int16(v), err
}

// I32 reads a big-endian signed 32-bit integer.
func (b *BigReader) I32() (int32, error) {
	v, err := b.U32()
	return int32(v), err
}

// I64 reads a big-endian signed 64-bit integer.
func (b *BigReader) I64() (int64, error) {
	v, err := b.U64()
	return int64(v), err
}

// F32 reads a big-endian IEEE-754 single-precision float.
func (b *BigReader) F32() (float32, error) {
	v, err := b.U32()
	return math.Float32frombits(v), err
}

// F64 reads a big-endian IEEE-754 double-precision float.
func (b *BigReader) F64() (float64, error) {
	v, err := b.U64()
	return math.Float64frombits(v), err
}

func accumulateBE(buf []byte) uint64 {
	var v uint64
	for _, x := range buf {
		v = v<<8 | uint64(x)
	}
	return v
}

// LittleReader reads little-endian primitives from an io.Reader, used for
// the SNG payload after decryption/inflation.
type LittleReader struct {
	r   io.Reader
	pos int64
}

// NewLittleReader wraps r for little-endian reads.
func NewLittleReader(r io.Reader) *LittleReader { return &LittleReader{r: r} }

// Pos returns the number of bytes consumed so far.
func (l *LittleReader) Pos() int64 { return l.pos }

func (l *LittleReader) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(l.r, buf)
	l.pos += int64(read)
	if err != nil {
		return nil, ErrUnexpectedEOF
	}
	return buf, nil
}

// Bytes reads n raw bytes.
func (l *LittleReader) Bytes(n int) ([]byte, error) { return l.read(n) }

// Skip advances the source by n bytes without returning them.
func (l *LittleReader) Skip(n int) error {
	_, err := l.read(n)
	return err
}

// U8 reads one unsigned byte.
func (l *LittleReader) U8() (uint8, error) {
	buf, err := l.read(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// U16 reads a little-endian uint16.
func (l *LittleReader) U16() (uint16, error) {
	buf, err := l.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// U32 reads a little-endian uint32.
func (l *LittleReader) U32() (uint32, error) {
	buf, err := l.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// U64 reads a little-endian uint64.
func (l *LittleReader) U64() (uint64, error) {
	buf, err := l.read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// I8 reads a signed byte.
func (l *LittleReader) I8() (int8, error) {
	v, err := l.U8()
	return int8(v), err
}

// I16 reads a little-endian signed 16-bit integer.
func (l *LittleReader) I16() (int16, error) {
	v, err := l.U16()
	return int16(v), err
}

// I32 reads a little-endian signed 32-bit integer.
func (l *LittleReader) I32() (int32, error) {
	v, err := l.U32()
	return int32(v), err
}

// F32 reads a little-endian IEEE-754 single-precision float.
func (l *LittleReader) F32() (float32, error) {
	v, err := l.U32()
	return math.Float32frombits(v), err
}

// F64 reads a little-endian IEEE-754 double-precision float.
func (l *LittleReader) F64() (float64, error) {
	v, err := l.U64()
	return math.Float64frombits(v), err
}

// ASCIIZ reads a fixed-width, null-padded byte run and decodes it as
// US-ASCII up to the first null byte.
func (l *LittleReader) ASCIIZ(width int) (string, error) {
	buf, err := l.read(width)
	if err != nil {
		return "", err
	}
	return asciiz(buf), nil
}

// ASCIIZ reads a fixed-width, null-padded byte run from a BigReader and
// decodes it as US-ASCII up to the first null byte.
func (b *BigReader) ASCIIZ(width int) (string, error) {
	buf, err := b.read(width)
	if err != nil {
		return "", err
	}
	return asciiz(buf), nil
}

func asciiz(buf []byte) string {
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}
