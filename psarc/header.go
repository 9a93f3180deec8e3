package psarc

import (
	"fmt"

	"github.com/jsphweid/rstabber/constants"
	"github.com/jsphweid/rstabber/endian"
)

// header is the 32-byte big-endian PSARC file header.
type header struct {
	Magic           uint32
	Version         uint32
	Compression     uint32
	TOCSize         uint32
	TOCEntrySize    uint32
	NumFiles        uint32
	BlockSizeBytes  uint32
	ArchiveFlags    uint32
}

func readHeader(r *endian.BigReader) (header, error) {
	var h header
	var err error
	if h.Magic, err = r.U32(); err != nil {
		return h, err
	}
	if h.Magic != constants.PSARCMagic {
		return h, fmt.Errorf("psarc: bad magic %08x", h.Magic)
	}
	if h.Version, err = r.U32(); err != nil {
		return h, err
	}
	if h.Compression, err = r.U32(); err != nil {
		return h, err
	}
	if h.Compression != constants.PSARCCompressionZlib {
		return h, fmt.Errorf("psarc: unsupported compression tag %08x", h.Compression)
	}
	if h.TOCSize, err = r.U32(); err != nil {
		return h, err
	}
	if h.TOCEntrySize, err = r.U32(); err != nil {
		return h, err
	}
	if h.NumFiles, err = r.U32(); err != nil {
		return h, err
	}
	if h.BlockSizeBytes, err = r.U32(); err != nil {
		return h, err
	}
	if h.ArchiveFlags, err = r.U32(); err != nil {
		return h, err
	}
	return h, nil
}

func (h header) tocEncrypted() bool {
	return h.ArchiveFlags&constants.PSARCFlagTOCEncrypted != 0
}

// blockLenWidth picks the smallest integer width b in {2,3,4} such that
// 256^b >= blockSize.
func blockLenWidth(blockSize uint32) int {
	for _, b := range []int{2, 3, 4} {
		limit := uint64(1)
		for i := 0; i < b; i++ {
			limit *= 256
		}
		if limit >= uint64(blockSize) {
			return b
		}
	}
	return 4
}
