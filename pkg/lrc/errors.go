package lrc

import (
	"errors"
	"fmt"
)

// ErrNotThisFormat is matched by every error reporting that a stream is not LRC.
var ErrNotThisFormat = errors.New("stream is not in LRC format")

// ErrNoTimestamp is returned by MatchTimestamp when no grammar matches.
var ErrNoTimestamp = errors.New("no timestamp")

// FormatError is returned when a stream is rejected as not being LRC.
// It carries no partial result.
type FormatError struct {
	Reason    string
	LinesRead int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s (after %d lines)", ErrNotThisFormat, e.Reason, e.LinesRead)
}

// Unwrap allows errors.Is(err, ErrNotThisFormat).
func (e *FormatError) Unwrap() error {
	return ErrNotThisFormat
}

// OverflowError is returned when a timestamp does not fit in an int64
// millisecond count.
type OverflowError struct {
	Line  string
	Field string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("timestamp overflow in %s field: %q", e.Field, e.Line)
}
