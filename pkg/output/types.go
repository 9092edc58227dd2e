// Package output renders parse reports.
package output

import (
	"time"

	"github.com/ccollicutt/lrcparse/pkg/batch"
	"github.com/ccollicutt/lrcparse/pkg/lrc"
)

// Report is the complete output of a parse run.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary" yaml:"summary"`

	// Files holds one entry per input, in input order.
	Files []FileReport `json:"files" yaml:"files"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// FileStatus is the outcome of one input.
type FileStatus string

const (
	StatusParsed FileStatus = "parsed"
	StatusNotLRC FileStatus = "not_lrc"
	StatusError  FileStatus = "error"
)

// FileReport describes one input file.
type FileReport struct {
	Path      string              `json:"path" yaml:"path"`
	Status    FileStatus          `json:"status" yaml:"status"`
	Error     string              `json:"error,omitempty" yaml:"error,omitempty"`
	Intervals []lrc.TimedInterval `json:"intervals,omitempty" yaml:"intervals,omitempty"`
	Stats     lrc.Stats           `json:"stats" yaml:"stats"`
	Duration  time.Duration       `json:"duration_ns" yaml:"duration"`
}

// Summary provides aggregate statistics.
type Summary struct {
	FilesChecked   int `json:"files_checked" yaml:"files_checked"`
	FilesParsed    int `json:"files_parsed" yaml:"files_parsed"`
	FilesNotLRC    int `json:"files_not_lrc" yaml:"files_not_lrc"`
	FilesFailed    int `json:"files_failed" yaml:"files_failed"`
	TotalIntervals int `json:"total_intervals" yaml:"total_intervals"`
	LinesRead      int `json:"lines_read" yaml:"lines_read"`
	DroppedPairs   int `json:"dropped_pairs" yaml:"dropped_pairs"`
}

// Metadata provides context about the run.
type Metadata struct {
	// ConfigFile is the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty" yaml:"config_file,omitempty"`

	// SearchTimeout is the first-line search window that was applied.
	SearchTimeout int `json:"search_timeout" yaml:"search_timeout"`

	// ParsedAt is when the run finished.
	ParsedAt time.Time `json:"parsed_at" yaml:"parsed_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration_ns" yaml:"duration"`
}

// NewReport creates a Report from a batch result.
func NewReport(result *batch.Result, configFile string, searchTimeout int) *Report {
	report := &Report{
		Files: make([]FileReport, 0, len(result.Files)),
		Metadata: Metadata{
			ConfigFile:    configFile,
			SearchTimeout: searchTimeout,
			ParsedAt:      time.Now(),
			Duration:      result.Duration,
		},
	}

	for _, fr := range result.Files {
		file := FileReport{
			Path:      fr.Path,
			Status:    StatusParsed,
			Intervals: fr.Intervals,
			Stats:     fr.Stats,
			Duration:  fr.Duration,
		}
		switch {
		case fr.NotLRC():
			file.Status = StatusNotLRC
			file.Error = fr.Err.Error()
			report.Summary.FilesNotLRC++
		case fr.Err != nil:
			file.Status = StatusError
			file.Error = fr.Err.Error()
			report.Summary.FilesFailed++
		default:
			report.Summary.FilesParsed++
		}

		report.Summary.TotalIntervals += len(fr.Intervals)
		report.Summary.LinesRead += fr.Stats.LinesRead
		report.Summary.DroppedPairs += fr.Stats.Dropped
		report.Files = append(report.Files, file)
	}
	report.Summary.FilesChecked = len(report.Files)

	return report
}

// HasFailures returns true if any input was not parsed.
func (r *Report) HasFailures() bool {
	return r.Summary.FilesNotLRC+r.Summary.FilesFailed > 0
}

// Brief is the quiet form of a Report: the summary and one status entry per
// file, without intervals.
type Brief struct {
	Summary Summary     `json:"summary" yaml:"summary"`
	Files   []FileBrief `json:"files" yaml:"files"`
}

// FileBrief is the outcome of one input in a Brief.
type FileBrief struct {
	Path      string     `json:"path" yaml:"path"`
	Status    FileStatus `json:"status" yaml:"status"`
	Intervals int        `json:"intervals" yaml:"intervals"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Brief condenses the report for quiet output.
func (r *Report) Brief() *Brief {
	b := &Brief{
		Summary: r.Summary,
		Files:   make([]FileBrief, 0, len(r.Files)),
	}
	for _, f := range r.Files {
		b.Files = append(b.Files, FileBrief{
			Path:      f.Path,
			Status:    f.Status,
			Intervals: len(f.Intervals),
			Error:     f.Error,
		})
	}
	return b
}
