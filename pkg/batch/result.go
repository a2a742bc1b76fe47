package batch

import "time"

// Status classifies the outcome of one file's conversion.
type Status int

const (
	// StatusOK: searchable output written and accessibility metadata injected.
	StatusOK Status = iota
	// StatusPartial: searchable output written but metadata injection failed;
	// the un-annotated file remains on disk.
	StatusPartial
	// StatusSkipped: file not processed (existing output or existing OCR layer).
	StatusSkipped
	// StatusFailed: no output produced for this file.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult records what happened to one input file. Err carries the reason
// for partial, skipped and failed outcomes.
type FileResult struct {
	Input         string
	Output        string
	Status        Status
	Pages         int
	WordsInserted int
	Err           error
}

// Summary aggregates the per-file results of one batch run. A summary is
// returned even when individual files fail; no file error aborts the run.
type Summary struct {
	Results  []FileResult
	Started  time.Time
	Duration time.Duration
}

// Count returns how many files finished with the given status.
func (s Summary) Count(st Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == st {
			n++
		}
	}
	return n
}

// Clean reports whether every processed file converted fully.
func (s Summary) Clean() bool {
	return s.Count(StatusFailed) == 0 && s.Count(StatusPartial) == 0
}
