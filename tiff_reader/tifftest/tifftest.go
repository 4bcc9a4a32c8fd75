// Package tifftest writes small uncompressed multi-page TIFF files for tests.
package tifftest

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"
)

// Page is an 8-bit grayscale page filled with a single value.
type Page struct {
	Width  int
	Height int
	Fill   byte
}

const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279

	typeShort = 3
	typeLong  = 4

	entryCount = 9
	ifdSize    = 2 + entryCount*12 + 4
)

// Encode returns a little-endian TIFF with one IFD per page, chained in order.
func Encode(pages ...Page) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian

	buf.WriteString("II")
	binary.Write(&buf, le, uint16(42))
	binary.Write(&buf, le, uint32(8))

	offset := uint32(8)
	for i, p := range pages {
		dataLen := uint32(p.Width * p.Height)
		dataOffset := offset + ifdSize
		// IFDs start on a word boundary.
		pad := dataLen % 2
		next := uint32(0)
		if i < len(pages)-1 {
			next = dataOffset + dataLen + pad
		}

		binary.Write(&buf, le, uint16(entryCount))
		entry := func(tag, typ uint16, value uint32) {
			binary.Write(&buf, le, tag)
			binary.Write(&buf, le, typ)
			binary.Write(&buf, le, uint32(1))
			if typ == typeShort {
				binary.Write(&buf, le, uint16(value))
				binary.Write(&buf, le, uint16(0))
				return
			}
			binary.Write(&buf, le, value)
		}
		entry(tagImageWidth, typeLong, uint32(p.Width))
		entry(tagImageLength, typeLong, uint32(p.Height))
		entry(tagBitsPerSample, typeShort, 8)
		entry(tagCompression, typeShort, 1)
		entry(tagPhotometric, typeShort, 1)
		entry(tagStripOffsets, typeLong, dataOffset)
		entry(tagSamplesPerPixel, typeShort, 1)
		entry(tagRowsPerStrip, typeLong, uint32(p.Height))
		entry(tagStripByteCounts, typeLong, dataLen)
		binary.Write(&buf, le, next)

		buf.Write(bytes.Repeat([]byte{p.Fill}, int(dataLen)))
		if pad > 0 {
			buf.WriteByte(0)
		}
		offset = dataOffset + dataLen + pad
	}
	return buf.Bytes()
}

// Write encodes pages into path and fails the test on error.
func Write(t testing.TB, path string, pages ...Page) {
	t.Helper()
	if err := os.WriteFile(path, Encode(pages...), 0o644); err != nil {
		t.Fatalf("write tiff fixture %s: %v", path, err)
	}
}
