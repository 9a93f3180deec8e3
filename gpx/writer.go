// Package gpx writes the sectorized Guitar Pro .gpx container (spec
// §4.8): a fixed-size-sector layout holding one zlib-compressed file,
// the serialized GPIF score.
package gpx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jsphweid/rstabber/constants"
)

// innerFilename is the name Guitar Pro itself gives the GPIF payload
// inside a .gpx container.
const innerFilename = "score.gpif"

// Write compresses xmlBytes and writes a complete .gpx container to
// outputPath, staging the write under a uuid-suffixed temp name next to
// the destination and renaming over it so a crash mid-write never
// leaves a half-written file at outputPath — the same idiom the teacher
// uses for its chunk filenames (see DESIGN.md).
func Write(xmlBytes []byte, outputPath string) error {
	compressed, err := compress(xmlBytes)
	if err != nil {
		return fmt.Errorf("gpx: compress payload: %w", err)
	}

	container := buildContainer(xmlBytes, compressed)

	tmpPath := outputPath + "." + uuid.New().String() + ".tmp"
	if err := os.WriteFile(tmpPath, container, 0o644); err != nil {
		return fmt.Errorf("gpx: write staged file: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("gpx: rename staged file: %w", err)
	}
	return nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildContainer assembles the header, directory, and data sectors per
// spec §4.8.
func buildContainer(xmlBytes, compressed []byte) []byte {
	var out bytes.Buffer
	out.Write(headerSector(len(xmlBytes), len(compressed)))
	out.Write(directorySector())
	out.Write(dataSectors(compressed))
	return out.Bytes()
}

func headerSector(uncompressedSize, compressedSize int) []byte {
	sector := make([]byte, constants.GPXSectorSize)
	copy(sector, constants.GPXMagicHeader)
	binary.LittleEndian.PutUint32(sector[4:8], 0x00000200)

	entry := sector[8:24]
	binary.LittleEndian.PutUint32(entry[0:4], 2*constants.GPXSectorSize)
	binary.LittleEndian.PutUint32(entry[4:8], uint32(uncompressedSize))
	binary.LittleEndian.PutUint32(entry[8:12], uint32(compressedSize))
	binary.LittleEndian.PutUint32(entry[12:16], 0)
	return sector
}

func directorySector() []byte {
	sector := make([]byte, constants.GPXSectorSize)
	copy(sector, constants.GPXMagicDirectory)

	entry := sector[4 : 4+132]
	name := []byte(innerFilename)
	if len(name) > 127 {
		name = name[:127]
	}
	copy(entry[:128], name)
	binary.LittleEndian.PutUint32(entry[128:132], 0)
	return sector
}

func dataSectors(payload []byte) []byte {
	const payloadPerSector = constants.GPXSectorSize - 4

	numSectors := (len(payload) + payloadPerSector - 1) / payloadPerSector
	if numSectors == 0 {
		numSectors = 1
	}

	out := make([]byte, numSectors*constants.GPXSectorSize)
	for i := 0; i < numSectors; i++ {
		sector := out[i*constants.GPXSectorSize : (i+1)*constants.GPXSectorSize]
		copy(sector, constants.GPXMagicData)

		start := i * payloadPerSector
		end := start + payloadPerSector
		if end > len(payload) {
			end = len(payload)
		}
		copy(sector[4:], payload[start:end])
	}
	return out
}

