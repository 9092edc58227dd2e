package lrc

import (
	"errors"
	"math"
	"regexp"
	"strconv"
)

// Grammar identifies one of the recognized leading timestamp shapes.
type Grammar int

const (
	// ShortMilli is [M+:SS.mmm].
	ShortMilli Grammar = iota + 1
	// ShortCenti is [M+:SS.cc].
	ShortCenti
	// LongMilli is [H+:MM:SS.mmm].
	LongMilli
	// LongCenti is [H+:MM:SS.cc].
	LongCenti
)

func (g Grammar) String() string {
	switch g {
	case ShortMilli:
		return "short+milli"
	case ShortCenti:
		return "short+centi"
	case LongMilli:
		return "long+milli"
	case LongCenti:
		return "long+centi"
	default:
		return "none"
	}
}

// FractionUnit names the unit of the sub-second field.
func (g Grammar) FractionUnit() string {
	switch g {
	case ShortMilli, LongMilli:
		return "milliseconds"
	case ShortCenti, LongCenti:
		return "centiseconds"
	default:
		return ""
	}
}

// Pattern returns the regular expression source for the grammar.
func (g Grammar) Pattern() string {
	for _, gr := range grammars {
		if gr.grammar == g {
			return gr.pattern.String()
		}
	}
	return ""
}

// Grammars lists the grammars in matching priority order.
func Grammars() []Grammar {
	out := make([]Grammar, len(grammars))
	for i, gr := range grammars {
		out[i] = gr.grammar
	}
	return out
}

type grammarDef struct {
	grammar Grammar
	pattern *regexp.Regexp
	milli   bool
}

// grammars is ordered by matching priority. The fraction is followed by the
// closing bracket, so a 3-digit fraction can never satisfy a 2-digit grammar.
var grammars = []grammarDef{
	{ShortMilli, regexp.MustCompile(`^\[(?P<M>\d+):(?P<S>\d{2})\.(?P<F>\d{3})\]`), true},
	{ShortCenti, regexp.MustCompile(`^\[(?P<M>\d+):(?P<S>\d{2})\.(?P<F>\d{2})\]`), false},
	{LongMilli, regexp.MustCompile(`^\[(?P<H>\d+):(?P<M>\d{2}):(?P<S>\d{2})\.(?P<F>\d{3})\]`), true},
	{LongCenti, regexp.MustCompile(`^\[(?P<H>\d+):(?P<M>\d{2}):(?P<S>\d{2})\.(?P<F>\d{2})\]`), false},
}

// Timestamp is a leading timestamp extracted from a line.
type Timestamp struct {
	Grammar    Grammar
	Hours      int64
	Minutes    int64
	Seconds    int64
	FractionMS int64

	// Millis is the total offset in milliseconds.
	Millis int64
}

// MatchTimestamp extracts the leading timestamp of a line, trying each
// grammar in priority order.
// Returns ErrNoTimestamp if no grammar matches, or an *OverflowError if the
// value does not fit in an int64 millisecond count.
func MatchTimestamp(line string) (Timestamp, error) {
	for _, g := range grammars {
		m := g.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return g.convert(line, m)
	}
	return Timestamp{}, ErrNoTimestamp
}

func (g grammarDef) convert(line string, m []string) (Timestamp, error) {
	ts := Timestamp{Grammar: g.grammar}

	fields := []struct {
		name string
		dst  *int64
	}{
		{"H", &ts.Hours},
		{"M", &ts.Minutes},
		{"S", &ts.Seconds},
		{"F", &ts.FractionMS},
	}
	for _, f := range fields {
		v, err := group(g.pattern, m, f.name)
		if err != nil {
			return Timestamp{}, &OverflowError{Line: line, Field: f.name}
		}
		*f.dst = v
	}
	if !g.milli {
		ts.FractionMS *= 10
	}

	total, ok := mulAdd(ts.Hours, 60, ts.Minutes)
	if ok {
		total, ok = mulAdd(total, 60, ts.Seconds)
	}
	if ok {
		total, ok = mulAdd(total, 1000, ts.FractionMS)
	}
	if !ok {
		return Timestamp{}, &OverflowError{Line: line, Field: "total"}
	}
	ts.Millis = total
	return ts, nil
}

// group parses a named capture group. Absent groups count as zero.
func group(re *regexp.Regexp, m []string, name string) (int64, error) {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(m) || m[idx] == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(m[idx], 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return 0, err
		}
		return 0, nil
	}
	return v, nil
}

// mulAdd returns a*mul+add for non-negative operands, reporting overflow.
func mulAdd(a, mul, add int64) (int64, bool) {
	if a > (math.MaxInt64-add)/mul {
		return 0, false
	}
	return a*mul + add, true
}
