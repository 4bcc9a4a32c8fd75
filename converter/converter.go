package converter

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"tiffs2pdfs/contracts"
	"tiffs2pdfs/files_manager"
	"tiffs2pdfs/pdf_writer"
	"tiffs2pdfs/reporter"
	"tiffs2pdfs/tiff_reader"
)

const creator = "tiffs2pdfs"

type ConversionJob = contracts.ConversionJob
type FileResult = contracts.FileResult
type GroupResult = contracts.GroupResult
type Summary = contracts.Summary

type pageSource interface {
	PageCount() int
	DecodePage(n int) (image.Image, error)
	Close() error
}

// Converter merges the TIFF files of one directory group into a single PDF.
type Converter struct {
	report *reporter.Reporter
	open   func(path string) (pageSource, error)
}

func New(report *reporter.Reporter) *Converter {
	if report == nil {
		report = reporter.New(zerolog.Nop())
	}
	return &Converter{
		report: report,
		open: func(path string) (pageSource, error) {
			return tiff_reader.Open(path)
		},
	}
}

// Convert writes job.OutputPath, overwriting any existing file. A file that
// fails is recorded in the result and the next file is processed; pages it
// produced before failing stay in the PDF.
func (c *Converter) Convert(job ConversionJob) (result GroupResult) {
	result = GroupResult{Job: job}

	out, err := os.Create(job.OutputPath)
	if err != nil {
		result.Err = fmt.Errorf("error creating PDF file: %w", err)
		return result
	}
	doc := pdf_writer.NewDocument(out, pdf_writer.Options{
		Title:   filepath.Base(job.Group.Dir),
		Creator: creator,
		Date:    newestModTime(job.Group.Files),
	})
	defer func() {
		if err := doc.Close(); err != nil && result.Err == nil {
			result.Err = err
		}
		if err := out.Close(); err != nil && result.Err == nil {
			result.Err = fmt.Errorf("error closing PDF file: %w", err)
		}
	}()

	for _, path := range job.Group.Files {
		fileResult := c.convertFile(doc, path)
		result.Files = append(result.Files, fileResult)
		result.Pages += fileResult.Pages
		if err := doc.Err(); err != nil {
			result.Err = err
			return result
		}
	}
	return result
}

func (c *Converter) convertFile(doc *pdf_writer.Document, path string) (result FileResult) {
	result.Path = path

	src, err := c.open(path)
	if err != nil {
		result.Err = err
		return result
	}
	defer src.Close()

	if c.report.DebugEnabled() {
		if dpiX, dpiY, err := tiff_reader.Resolution(path); err == nil {
			c.report.Resolution(path, dpiX, dpiY)
		}
	}

	for page := 1; page <= src.PageCount(); page++ {
		img, err := src.DecodePage(page)
		if err != nil {
			result.Err = err
			return result
		}
		if err := doc.AddImagePage(img); err != nil {
			result.Err = fmt.Errorf("error adding page %d: %w", page, err)
			return result
		}
		result.Pages++
		bounds := img.Bounds()
		c.report.PageInfo(path, page, bounds.Dx(), bounds.Dy())
	}
	return result
}

// newestModTime dates the PDF after its inputs so unchanged inputs give identical output.
func newestModTime(files []string) time.Time {
	var newest time.Time
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if mt := info.ModTime(); mt.After(newest) {
			newest = mt
		}
	}
	return newest
}

// Run scans root and converts every group in order. Only a scan failure is
// returned; per-group and per-file failures are reported and counted.
func Run(root string, conv contracts.Converter, report *reporter.Reporter) (Summary, error) {
	groups, err := files_manager.ScanTIFFGroups(root, report.Skipped)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TIFFs:  files_manager.CountTIFFs(groups),
		Groups: len(groups),
	}
	report.Loaded(root, summary.TIFFs, summary.Groups)

	for _, group := range groups {
		job := files_manager.NewConversionJob(group)
		report.Processing(job)
		result := conv.Convert(job)
		report.GroupDone(result)
		summary.Add(result)
	}

	report.Finished(summary)
	return summary, nil
}
