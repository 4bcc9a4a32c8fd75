package pdf_writer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
)

var ErrNoPages = errors.New("document has no pages")

type Options struct {
	Title   string
	Creator string
	// Date is written as both creation and modification date. Zero means now.
	Date time.Time
}

// Document collects image pages and serialises them to out on Close.
// Each page is exactly as large as its image, one pixel per point.
type Document struct {
	pdf    *gofpdf.Fpdf
	out    io.Writer
	pages  int
	closed bool
}

func NewDocument(out io.Writer, opts Options) *Document {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", SizeStr: "A4"})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Creator != "" {
		pdf.SetCreator(opts.Creator, true)
	}
	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}
	pdf.SetCreationDate(date)
	pdf.SetModificationDate(date)

	return &Document{pdf: pdf, out: out}
}

// AddImagePage starts a new page sized to img and draws img over it. An image
// that cannot be encoded leaves the document untouched; a failure inside the
// PDF library is permanent and reported by Err from then on.
func (d *Document) AddImagePage(img image.Image) error {
	if d.closed {
		return fmt.Errorf("document already closed")
	}
	if err := d.Err(); err != nil {
		return err
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return fmt.Errorf("image has empty bounds %v", bounds)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("error encoding page image: %v", err)
	}

	width := float64(bounds.Dx())
	height := float64(bounds.Dy())
	imageID := fmt.Sprintf("img_%d", d.pages)
	options := gofpdf.ImageOptions{
		ImageType: "PNG",
		ReadDpi:   false,
	}

	d.pdf.RegisterImageOptionsReader(imageID, options, &buf)
	if err := d.Err(); err != nil {
		return err
	}
	d.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})
	d.pdf.ImageOptions(imageID, 0, 0, width, height, false, options, 0, "")
	if err := d.Err(); err != nil {
		return err
	}
	d.pages++
	return nil
}

func (d *Document) PageCount() int {
	return d.pages
}

// Err returns the sticky error of the underlying PDF library, if any.
func (d *Document) Err() error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("pdf document failed: %w", err)
	}
	return nil
}

// Close writes the document. A document without pages writes nothing and
// returns ErrNoPages. Calling Close again is a no-op.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.Err(); err != nil {
		return err
	}
	if d.pages == 0 {
		return ErrNoPages
	}
	if err := d.pdf.Output(d.out); err != nil {
		return fmt.Errorf("error saving PDF file: %w", err)
	}
	return nil
}
