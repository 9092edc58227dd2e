package lrc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Decoder converts LRC line streams into timed intervals.
// A Decoder holds only configuration; every Decode call owns its own state,
// so one Decoder may be used from several goroutines at once.
type Decoder struct {
	searchTimeout int
	logger        logrus.FieldLogger
}

// Option configures the Decoder.
type Option func(*Decoder)

// WithSearchTimeout sets how many unanchored lines a stream may contain
// before it is rejected (default 20). A value <= 0 rejects a stream whose
// first line is not anchored.
func WithSearchTimeout(n int) Option {
	return func(d *Decoder) {
		d.searchTimeout = n
	}
}

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDecoder creates a Decoder with the given options.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		searchTimeout: DefaultSearchTimeout,
		logger:        discardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SearchTimeout returns the configured search window.
func (d *Decoder) SearchTimeout() int {
	return d.searchTimeout
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type slotKind int

const (
	slotEmpty slotKind = iota
	slotPending
)

// slot is the assembler's single line of lookbehind.
type slot struct {
	kind    slotKind
	line    string
	lineNum int
	start   int64
	timed   bool
}

// Decode reads src to the end and returns the intervals it describes.
func (d *Decoder) Decode(ctx context.Context, src LineSource) ([]TimedInterval, error) {
	items, _, err := d.DecodeStats(ctx, src)
	return items, err
}

// DecodeStats is Decode, also returning statistics about the pass.
// On error the returned Stats describe the lines consumed so far.
func (d *Decoder) DecodeStats(ctx context.Context, src LineSource) ([]TimedInterval, Stats, error) {
	var (
		stats Stats
		items []TimedInterval
		prev  slot
	)
	budget := NewSearchBudget(d.searchTimeout)

	for {
		line, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("reading line %d: %w", stats.LinesRead+1, err)
		}
		stats.LinesRead++

		if IsAnchored(line) {
			stats.Anchored++
		} else {
			stats.Unanchored++
			if budget.Spend() {
				return nil, stats, &FormatError{
					Reason:    fmt.Sprintf("no valid timestamp within a %d-line search window", d.searchTimeout),
					LinesRead: stats.LinesRead,
				}
			}
		}

		cur := slot{kind: slotPending, line: line, lineNum: stats.LinesRead}
		ts, err := MatchTimestamp(line)
		switch {
		case err == nil:
			cur.start, cur.timed = ts.Millis, true
		case !errors.Is(err, ErrNoTimestamp):
			return nil, stats, fmt.Errorf("line %d: %w", stats.LinesRead, err)
		}

		switch prev.kind {
		case slotPending:
			if prev.timed && cur.timed {
				items = append(items, TimedInterval{
					StartMS: prev.start,
					EndMS:   cur.start,
					Lines:   []string{Clean(prev.line)},
				})
			} else {
				stats.Dropped++
				d.logDrop(prev, cur)
			}
		case slotEmpty:
		}
		prev = cur
	}

	if prev.kind == slotPending {
		start := Unknown
		if prev.timed {
			start = prev.start
		}
		items = append(items, TimedInterval{
			StartMS: start,
			EndMS:   Unknown,
			Lines:   []string{Clean(prev.line)},
		})
	}

	if len(items) == 0 {
		return nil, stats, &FormatError{Reason: "no intervals produced", LinesRead: stats.LinesRead}
	}
	stats.Emitted = len(items)
	return items, stats, nil
}

func (d *Decoder) logDrop(prev, cur slot) {
	entry := d.logger.WithFields(logrus.Fields{
		"line":      prev.lineNum,
		"next_line": cur.lineNum,
	})
	if IsAnchored(prev.line) && IsAnchored(cur.line) {
		// The classifier and the extractor share one grammar table, so this
		// should never happen.
		entry.Warn("anchored line pair produced no interval")
		return
	}
	entry.Debug("skipping line pair without two timestamps")
}

// Parse decodes src with a new Decoder built from opts.
func Parse(ctx context.Context, src LineSource, opts ...Option) ([]TimedInterval, error) {
	return NewDecoder(opts...).Decode(ctx, src)
}

// ParseLines decodes an in-memory slice of lines.
func ParseLines(lines []string, opts ...Option) ([]TimedInterval, error) {
	return Parse(context.Background(), &sliceSource{lines: lines}, opts...)
}

// sliceSource mirrors source.SliceSource. The source package tests decode
// through lrc, so importing source here would be an import cycle.
type sliceSource struct {
	lines []string
	pos   int
}

func (s *sliceSource) Next(_ context.Context) (string, error) {
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}
