// Package lrc decodes LRC lyric streams into timed intervals.
//
// The decoder is single-pass: it reads one line at a time, keeps at most one
// previous line, and emits an interval as soon as the start time of the next
// line is known. The last interval has no known end.
package lrc

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Unknown marks a time that could not be determined. It is only ever used as
// the end of the last interval, or as its start when the final line has no
// timestamp.
const Unknown int64 = -1

// TimedInterval is one lyric entry.
type TimedInterval struct {
	// StartMS is the inclusive start offset in milliseconds.
	StartMS int64 `json:"start_ms" yaml:"start_ms"`

	// EndMS is the start of the following line in milliseconds, or Unknown.
	EndMS int64 `json:"end_ms" yaml:"end_ms"`

	// Lines holds the cleaned display text. Always exactly one element.
	Lines []string `json:"lines" yaml:"lines"`
}

// Start returns the start offset as a duration.
func (t TimedInterval) Start() time.Duration {
	return time.Duration(t.StartMS) * time.Millisecond
}

// End returns the end offset and false when the end is unknown.
func (t TimedInterval) End() (time.Duration, bool) {
	if t.EndMS == Unknown {
		return 0, false
	}
	return time.Duration(t.EndMS) * time.Millisecond, true
}

// Text joins the interval lines with newlines.
func (t TimedInterval) Text() string {
	return strings.Join(t.Lines, "\n")
}

func (t TimedInterval) String() string {
	end := "?"
	if d, ok := t.End(); ok {
		end = FormatMillis(int64(d / time.Millisecond))
	}
	start := "?"
	if t.StartMS != Unknown {
		start = FormatMillis(t.StartMS)
	}
	return fmt.Sprintf("%s --> %s: %s", start, end, t.Text())
}

// FormatMillis renders a millisecond offset as [h:]mm:ss.mmm.
func FormatMillis(ms int64) string {
	if ms < 0 {
		return "-" + FormatMillis(-ms)
	}
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	s := (ms / 1000) % 60
	frac := ms % 1000
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, frac)
	}
	return fmt.Sprintf("%02d:%02d.%03d", m, s, frac)
}

// LineSource provides the decoded text lines of one stream, in order, with
// line endings already stripped.
// Implementations must be safe for sequential access (not concurrent).
type LineSource interface {
	// Next returns the next line.
	// Returns io.EOF when no more lines are available.
	Next(ctx context.Context) (string, error)
}

// Stats describes one decode pass.
type Stats struct {
	// LinesRead is the number of lines consumed from the source.
	LinesRead int `json:"lines_read" yaml:"lines_read"`

	// Anchored is the number of lines that carried a leading timestamp.
	Anchored int `json:"anchored" yaml:"anchored"`

	// Unanchored is the number of lines without a leading timestamp.
	Unanchored int `json:"unanchored" yaml:"unanchored"`

	// Dropped is the number of line pairs that produced no interval.
	Dropped int `json:"dropped" yaml:"dropped"`

	// Emitted is the number of intervals returned.
	Emitted int `json:"emitted" yaml:"emitted"`
}
