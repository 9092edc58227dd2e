package output

import (
	"context"
	"fmt"
	"io"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "lrcparse: %d files checked, %d parsed, %d not LRC, %d failed, %d intervals\n",
		report.Summary.FilesChecked,
		report.Summary.FilesParsed,
		report.Summary.FilesNotLRC,
		report.Summary.FilesFailed,
		report.Summary.TotalIntervals)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== lrcparse Report ===")
	fmt.Fprintln(w)

	for i := range report.Files {
		f.formatFile(&report.Files[i], w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d files checked, %d parsed, %d not LRC, %d failed, %d intervals\n",
		report.Summary.FilesChecked,
		report.Summary.FilesParsed,
		report.Summary.FilesNotLRC,
		report.Summary.FilesFailed,
		report.Summary.TotalIntervals)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Lines read: %d\n", report.Summary.LinesRead)
		fmt.Fprintf(w, "Dropped pairs: %d\n", report.Summary.DroppedPairs)
		fmt.Fprintf(w, "Search timeout: %d\n", report.Metadata.SearchTimeout)
		_, err := fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
		return err
	}

	return nil
}

func (f *TextFormatter) formatFile(file *FileReport, w io.Writer) {
	switch file.Status {
	case StatusParsed:
		fmt.Fprintf(w, "[PARSED] %s (%d intervals)\n", file.Path, len(file.Intervals))
	case StatusNotLRC:
		fmt.Fprintf(w, "[NOT LRC] %s\n", file.Path)
	default:
		fmt.Fprintf(w, "[ERROR] %s\n", file.Path)
	}

	if file.Error != "" {
		fmt.Fprintf(w, "  %s\n", file.Error)
	}

	for _, iv := range file.Intervals {
		fmt.Fprintf(w, "  %s\n", iv)
	}

	if f.opts.Verbose {
		s := file.Stats
		fmt.Fprintf(w, "  Lines: %d read, %d anchored, %d unanchored, %d dropped pairs (%s)\n",
			s.LinesRead, s.Anchored, s.Unanchored, s.Dropped, file.Duration.Round(1e3))
	}

	fmt.Fprintln(w)
}
