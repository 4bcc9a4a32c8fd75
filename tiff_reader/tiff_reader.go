package tiff_reader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	gtiff "github.com/google/tiff"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

var (
	ErrPageRange = errors.New("page out of range")
	ErrIFDChain  = errors.New("malformed IFD chain")
)

// Source is an open TIFF file whose pages can be decoded one at a time.
type Source struct {
	path    string
	file    *os.File
	header  [8]byte
	order   binary.ByteOrder
	offsets []uint32
}

// Open reads the IFD chain of the file at path. The returned Source owns the
// file handle until Close.
func Open(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening TIFF file: %w", err)
	}
	src, err := newSource(path, file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return src, nil
}

func newSource(path string, file *os.File) (*Source, error) {
	src := &Source{path: path, file: file}
	if _, err := file.ReadAt(src.header[:], 0); err != nil {
		return nil, fmt.Errorf("error reading TIFF header: %w", err)
	}
	switch string(src.header[:2]) {
	case "II":
		src.order = binary.LittleEndian
	case "MM":
		src.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("not a TIFF file: bad byte order %q", src.header[:2])
	}
	if magic := src.order.Uint16(src.header[2:4]); magic != 42 {
		return nil, fmt.Errorf("not a classic TIFF file: magic %d", magic)
	}

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("error reading TIFF file info: %w", err)
	}
	if src.offsets, err = walkIFDs(file, src.order, src.order.Uint32(src.header[4:8]), info.Size()); err != nil {
		return nil, err
	}

	parsed, err := gtiff.Parse(file, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("error parsing TIFF structure: %w", err)
	}
	if n := len(parsed.IFDs()); n != len(src.offsets) {
		return nil, fmt.Errorf("TIFF structure has %d IFDs, chain has %d", n, len(src.offsets))
	}
	return src, nil
}

// walkIFDs follows the next-IFD pointers from first and returns every IFD
// offset in page order. Each offset must lie inside the file and may appear once.
func walkIFDs(r io.ReaderAt, order binary.ByteOrder, first uint32, size int64) ([]uint32, error) {
	var offsets []uint32
	seen := make(map[uint32]bool)
	var buf [4]byte
	for next := first; next != 0; {
		if seen[next] {
			return nil, fmt.Errorf("%w: IFD at offset %d is referenced twice", ErrIFDChain, next)
		}
		if int64(next)+2 > size {
			return nil, fmt.Errorf("%w: IFD offset %d is past end of file (%d bytes)", ErrIFDChain, next, size)
		}
		seen[next] = true
		offsets = append(offsets, next)

		if _, err := r.ReadAt(buf[:2], int64(next)); err != nil {
			return nil, fmt.Errorf("error reading IFD at offset %d: %w", next, err)
		}
		entries := int64(order.Uint16(buf[:2]))
		nextPos := int64(next) + 2 + entries*12
		if nextPos+4 > size {
			return nil, fmt.Errorf("%w: IFD at offset %d runs past end of file", ErrIFDChain, next)
		}
		if _, err := r.ReadAt(buf[:4], nextPos); err != nil {
			return nil, fmt.Errorf("error reading next IFD offset at %d: %w", nextPos, err)
		}
		next = order.Uint32(buf[:4])
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("TIFF file has no pages")
	}
	return offsets, nil
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) PageCount() int {
	return len(s.offsets)
}

// DecodePage decodes page n, counting from 1.
func (s *Source) DecodePage(n int) (image.Image, error) {
	if n < 1 || n > len(s.offsets) {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageRange, n, len(s.offsets))
	}
	img, err := tiff.Decode(s.pageReader(s.offsets[n-1]))
	if err != nil {
		return nil, fmt.Errorf("error decoding page %d: %w", n, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("page %d has empty bounds %v", n, bounds)
	}
	return to8Bit(img), nil
}

func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// pageReader presents the file as if the header pointed at the IFD at offset.
// x/image/tiff only ever decodes the first IFD, so this is how later pages are reached.
func (s *Source) pageReader(offset uint32) *pageReader {
	pr := &pageReader{r: s.file, header: s.header}
	s.order.PutUint32(pr.header[4:8], offset)
	return pr
}

type pageReader struct {
	r      io.ReaderAt
	header [8]byte
	pos    int64
}

func (p *pageReader) ReadAt(b []byte, off int64) (int, error) {
	n, err := p.r.ReadAt(b, off)
	for i := 0; i < n && off+int64(i) < int64(len(p.header)); i++ {
		b[i] = p.header[off+int64(i)]
	}
	return n, err
}

func (p *pageReader) Read(b []byte) (int, error) {
	n, err := p.ReadAt(b, p.pos)
	p.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// to8Bit converts 16-bit images, which the PDF writer cannot embed.
func to8Bit(img image.Image) image.Image {
	bounds := img.Bounds()
	switch img.(type) {
	case *image.Gray16:
		dst := image.NewGray(bounds)
		draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
		return dst
	case *image.RGBA64, *image.NRGBA64:
		dst := image.NewNRGBA(bounds)
		draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
		return dst
	}
	return img
}
