package contracts

type Converter interface {
	Convert(job ConversionJob) GroupResult
}

// FileResult is the outcome of converting a single TIFF file. Pages counts the
// pages that made it into the PDF, even when Err is set.
type FileResult struct {
	Path  string
	Pages int
	Err   error
}

// GroupResult is the outcome of one directory group. Err is only set for
// failures outside the per-file handling (output file, PDF document, no pages).
type GroupResult struct {
	Job   ConversionJob
	Files []FileResult
	Pages int
	Err   error
}

func (r GroupResult) FailedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

type Summary struct {
	TIFFs        int
	Groups       int
	Written      int
	Pages        int
	FailedFiles  int
	FailedGroups int
}

// Add folds a group result into the summary.
func (s *Summary) Add(r GroupResult) {
	s.Pages += r.Pages
	s.FailedFiles += r.FailedFiles()
	if r.Err != nil {
		s.FailedGroups++
		return
	}
	s.Written++
}
