// Package reporter prints conversion progress and failures. It never changes
// the control flow of a run.
package reporter

import (
	"github.com/rs/zerolog"

	"tiffs2pdfs/contracts"
)

type Reporter struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Reporter {
	return &Reporter{log: log}
}

func (r *Reporter) Loaded(root string, tiffs, dirs int) {
	r.log.Info().
		Int("tiffs", tiffs).
		Int("dirs", dirs).
		Str("root", root).
		Msgf("loaded %d tiffs in %d dirs from under %s", tiffs, dirs, root)
}

// Skipped reports a path the scanner could not read.
func (r *Reporter) Skipped(path string, err error) {
	r.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
}

func (r *Reporter) Processing(job contracts.ConversionJob) {
	r.log.Info().
		Str("dir", job.Group.Dir).
		Int("tiff_count", len(job.Group.Files)).
		Str("output", job.OutputPath).
		Msgf("processing tiffs in dir: [%s], tiff count: [%d], outputting to: [%s]",
			job.Group.Dir, len(job.Group.Files), job.OutputPath)
}

func (r *Reporter) FileFailed(res contracts.FileResult) {
	r.log.Error().
		Err(res.Err).
		Str("file", res.Path).
		Int("pages_converted", res.Pages).
		Msgf("failed to process tiff file %s", res.Path)
}

func (r *Reporter) GroupFailed(res contracts.GroupResult) {
	r.log.Error().
		Err(res.Err).
		Str("dir", res.Job.Group.Dir).
		Msgf("failed to process tiffs in dir %s", res.Job.Group.Dir)
}

// GroupDone reports every failed file of the group, then the group outcome.
func (r *Reporter) GroupDone(res contracts.GroupResult) {
	for _, f := range res.Files {
		if f.Err != nil {
			r.FileFailed(f)
		}
	}
	if res.Err != nil {
		r.GroupFailed(res)
		return
	}
	r.log.Debug().
		Str("output", res.Job.OutputPath).
		Int("pages", res.Pages).
		Msg("wrote pdf")
}

func (r *Reporter) PageInfo(path string, page, width, height int) {
	r.log.Debug().
		Str("file", path).
		Int("page", page).
		Int("width", width).
		Int("height", height).
		Msg("added page")
}

func (r *Reporter) Resolution(path string, dpiX, dpiY float64) {
	r.log.Debug().
		Str("file", path).
		Float64("dpi_x", dpiX).
		Float64("dpi_y", dpiY).
		Msg("declared resolution")
}

// DebugEnabled lets callers skip work that only feeds debug lines.
func (r *Reporter) DebugEnabled() bool {
	return r.log.GetLevel() <= zerolog.DebugLevel
}

func (r *Reporter) Finished(s contracts.Summary) {
	r.log.Info().
		Int("pdfs", s.Written).
		Int("pages", s.Pages).
		Int("failed_files", s.FailedFiles).
		Int("failed_dirs", s.FailedGroups).
		Msgf("wrote %d pdfs with %d pages", s.Written, s.Pages)
}
