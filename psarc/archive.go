// Package psarc reads Ubisoft PlayStation Archive (.psarc) containers: an
// optionally AES-256/CFB-8-encrypted, block-indexed table of contents
// followed by zlib-compressed data blocks. See spec §4.2.
package psarc

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jsphweid/rstabber/endian"
)

// Entry is one file in the archive, TOC order preserved, with the names
// blob (TOC index 0) already consumed and dropped.
type Entry struct {
	ID     int
	MD5    [16]byte
	ZIndex uint32
	Length uint64
	Offset uint64
	Name   string
}

// Archive is an open PSARC file. Block reads mutate the underlying file
// position, so all reads are serialized through mu per spec §5.
type Archive struct {
	mu        sync.Mutex
	r         io.ReadSeeker
	blockSize uint32
	zLens     []uint64
	entries   []*Entry
}

// Open parses the header and TOC of r and returns a handle for lazily
// decompressing individual entries.
func Open(r io.ReadSeeker) (*Archive, error) {
	br := endian.NewBigReader(io.NewSectionReader(asReaderAt(r), 0, 32))
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	tocBodySize := int(h.TOCSize) - 32
	if tocBodySize < 0 {
		return nil, fmt.Errorf("psarc: TOC size smaller than header")
	}
	if _, err := r.Seek(32, io.SeekStart); err != nil {
		return nil, err
	}
	body := make([]byte, tocBodySize)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("psarc: reading TOC body: %w", err)
	}

	if h.tocEncrypted() {
		body, err = decryptTOCCFB8(body)
		if err != nil {
			return nil, err
		}
	}

	layout, err := parseTOC(body, h)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		r:         r,
		blockSize: h.BlockSizeBytes,
		zLens:     layout.ZLens,
	}

	rawEntries := layout.Entries
	if len(rawEntries) == 0 {
		return a, nil
	}

	namesEntry := &Entry{ID: 0, MD5: rawEntries[0].MD5, ZIndex: rawEntries[0].ZIndex, Length: rawEntries[0].Length, Offset: rawEntries[0].Offset}
	namesBytes, err := a.decompressEntry(namesEntry)
	if err != nil {
		return nil, fmt.Errorf("psarc: reading names blob: %w", err)
	}
	names := strings.Split(string(namesBytes), "\n")

	for i := 1; i < len(rawEntries); i++ {
		raw := rawEntries[i]
		var name string
		if i-1 < len(names) {
			name = names[i-1]
		}
		a.entries = append(a.entries, &Entry{
			ID:     i,
			MD5:    raw.MD5,
			ZIndex: raw.ZIndex,
			Length: raw.Length,
			Offset: raw.Offset,
			Name:   name,
		})
	}
	return a, nil
}

// Entries returns the archive's entries, names resolved, names blob
// already excluded.
func (a *Archive) Entries() []*Entry { return a.entries }

// Open lazily decompresses an entry's full contents on demand.
func (a *Archive) Open(e *Entry) (io.Reader, error) {
	data, err := a.decompressEntry(e)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// FindBySuffix returns the first entry whose lowercased, slash-normalized
// name ends with suffix (also lowercased/normalized), or nil.
func (a *Archive) FindBySuffix(suffix string) *Entry {
	suffix = normalizeName(suffix)
	for _, e := range a.entries {
		if strings.HasSuffix(normalizeName(e.Name), suffix) {
			return e
		}
	}
	return nil
}

// FindContaining returns every entry whose normalized name contains frag.
func (a *Archive) FindContaining(frag string) []*Entry {
	frag = normalizeName(frag)
	var out []*Entry
	for _, e := range a.entries {
		if strings.Contains(normalizeName(e.Name), frag) {
			out = append(out, e)
		}
	}
	return out
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "\\", "/"))
}

// decompressEntry performs the block-indexed decompression described in
// spec §4.2: seek to the entry's offset, then consume blocks starting at
// z_index until length bytes are produced or the block table runs out.
func (a *Archive) decompressEntry(e *Entry) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.r.Seek(int64(e.Offset), io.SeekStart); err != nil {
		return nil, err
	}

	out := make([]byte, 0, e.Length)
	blockSize := int(a.blockSize)
	zi := int(e.ZIndex)

	for uint64(len(out)) < e.Length && zi < len(a.zLens) {
		remaining := int(e.Length) - len(out)
		zlen := a.zLens[zi]
		zi++

		if zlen == 0 {
			n := blockSize
			if n > remaining {
				n = remaining
			}
			buf := make([]byte, n)
			if _, err := io.ReadFull(a.r, buf); err != nil {
				// Missing block: the entry truncates, no error (spec §4.2).
				return out, nil
			}
			out = append(out, buf...)
			continue
		}

		buf := make([]byte, zlen)
		if _, err := io.ReadFull(a.r, buf); err != nil {
			return out, nil
		}

		if len(buf) > 0 && buf[0] == 0x78 {
			zr, err := zlib.NewReader(bytes.NewReader(buf))
			if err != nil {
				return nil, fmt.Errorf("psarc: inflating block: %w", err)
			}
			inflated, err := io.ReadAll(io.LimitReader(zr, int64(remaining)))
			zr.Close()
			if err != nil {
				return nil, fmt.Errorf("psarc: inflating block: %w", err)
			}
			out = append(out, inflated...)
		} else {
			// Short block that happened not to compress; stored verbatim
			// (undocumented but observed heuristic, spec §9(c)).
			if len(buf) > remaining {
				buf = buf[:remaining]
			}
			out = append(out, buf...)
		}
	}
	return out, nil
}

// asReaderAt adapts an io.ReadSeeker for use with io.NewSectionReader; the
// header is always the first 32 bytes, read before any entry decompression
// begins, so this never races with block reads.
func asReaderAt(r io.ReadSeeker) io.ReaderAt {
	if ra, ok := r.(io.ReaderAt); ok {
		return ra
	}
	return &seekerReaderAt{r}
}

type seekerReaderAt struct {
	r io.ReadSeeker
}

func (s *seekerReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if _, err := s.r.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(s.r, p)
}
