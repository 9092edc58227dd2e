// Package detector inspects lyric files and reports which timestamp
// grammars they use.
package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ccollicutt/lrcparse/pkg/lrc"
	"github.com/ccollicutt/lrcparse/pkg/source"
)

// DetectionResult holds the result of analyzing a lyric file.
type DetectionResult struct {
	Matches         []FormatMatch // Grammars that matched, most lines first
	SampledLines    int           // Number of lines sampled
	AnchoredLines   int           // Lines starting with a recognized timestamp
	UnanchoredLines int           // Lines without one
	EnhancedLines   int           // Lines carrying <mm:ss.xx> word tags
	FirstAnchored   int           // 1-based line number of the first anchored line (0 if none)

	// SearchTimeout is the budget the verdict was computed against.
	SearchTimeout int

	// ExhaustedAt is the 1-based line at which the decoder would reject the
	// file, or 0 if the sample stays within budget.
	ExhaustedAt int
}

// FormatMatch represents a grammar that matched with its share of lines.
type FormatMatch struct {
	Format       *GrammarFormat
	Confidence   float64 // 0.0 to 1.0 (share of anchored lines)
	MatchCount   int     // Number of lines that matched
	SampleLine   string  // First line that matched
	SampleMillis int64   // Offset of the sample line, or lrc.Unknown on overflow
}

// Detector samples lyric files to report their timestamp grammars.
type Detector struct {
	formats       []*GrammarFormat
	sampleSize    int
	searchTimeout int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 200).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithSearchTimeout sets the budget used for the acceptance verdict.
func WithSearchTimeout(n int) Option {
	return func(d *Detector) {
		d.searchTimeout = n
	}
}

// New creates a new Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:       DefaultFormats(),
		sampleSize:    200,
		searchTimeout: lrc.DefaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples the head of a lyric file.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	src, err := source.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	var lines []string
	for len(lines) < d.sampleSize {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sampling %s: %w", path, err)
		}
		lines = append(lines, line)
	}

	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of lyric lines.
// Blank lines are kept: the decoder counts them against the search budget.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{
		SampledLines:  len(lines),
		SearchTimeout: d.searchTimeout,
	}

	byGrammar := make(map[lrc.Grammar]*FormatMatch)
	budget := lrc.NewSearchBudget(d.searchTimeout)

	for i, line := range lines {
		if lrc.HasEnhancedTags(line) {
			result.EnhancedLines++
		}

		g, ok := lrc.Classify(line)
		if !ok {
			result.UnanchoredLines++
			if budget.Spend() && result.ExhaustedAt == 0 {
				result.ExhaustedAt = i + 1
			}
			continue
		}

		result.AnchoredLines++
		if result.FirstAnchored == 0 {
			result.FirstAnchored = i + 1
		}

		m := byGrammar[g]
		if m == nil {
			m = &FormatMatch{
				Format:       d.format(g),
				SampleLine:   line,
				SampleMillis: lrc.Unknown,
			}
			if ts, err := lrc.MatchTimestamp(line); err == nil {
				m.SampleMillis = ts.Millis
			}
			byGrammar[g] = m
		}
		m.MatchCount++
	}

	for _, m := range byGrammar {
		m.Confidence = float64(m.MatchCount) / float64(result.AnchoredLines)
		result.Matches = append(result.Matches, *m)
	}

	// Most lines first; ties keep matching priority order.
	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].MatchCount != result.Matches[j].MatchCount {
			return result.Matches[i].MatchCount > result.Matches[j].MatchCount
		}
		return result.Matches[i].Format.Grammar < result.Matches[j].Format.Grammar
	})

	return result
}

func (d *Detector) format(g lrc.Grammar) *GrammarFormat {
	for _, f := range d.formats {
		if f.Grammar == g {
			return f
		}
	}
	return &GrammarFormat{Grammar: g, Name: g.String(), PatternStr: g.Pattern()}
}

// BestMatch returns the grammar matching the most lines, or nil if none.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one line was anchored.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// WithinBudget reports whether the sampled lines would pass the decoder's
// first-line search.
func (r *DetectionResult) WithinBudget() bool {
	return r.ExhaustedAt == 0
}

// SuggestedSearchTimeout returns the smallest search timeout, never below
// the default, that would accept every sampled line.
func (r *DetectionResult) SuggestedSearchTimeout() int {
	n := r.UnanchoredLines + 1
	if n < lrc.DefaultSearchTimeout {
		return lrc.DefaultSearchTimeout
	}
	return n
}

// Mixed reports whether more than one grammar was seen.
func (r *DetectionResult) Mixed() bool {
	return len(r.Matches) > 1
}
