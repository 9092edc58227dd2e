// Package batch parses many lyric files concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/lrcparse/pkg/lrc"
	"github.com/ccollicutt/lrcparse/pkg/source"
)

// Options configures a batch run.
type Options struct {
	// Concurrency bounds how many files are decoded at once (0 = NumCPU).
	Concurrency int

	// Decoder is shared by every file. A default decoder is used when nil.
	Decoder *lrc.Decoder

	// Logger receives one entry per file.
	Logger logrus.FieldLogger
}

// FileResult is the outcome of decoding one file.
type FileResult struct {
	Path      string
	Intervals []lrc.TimedInterval
	Stats     lrc.Stats
	Err       error
	Duration  time.Duration
}

// NotLRC reports whether the file was rejected as not being LRC.
func (r FileResult) NotLRC() bool {
	return errors.Is(r.Err, lrc.ErrNotThisFormat)
}

// Result holds per-file results in input order.
type Result struct {
	Files    []FileResult
	Duration time.Duration
}

// Parsed returns how many files decoded without error.
func (r *Result) Parsed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns how many files ended in any error.
func (r *Result) Failed() int {
	return len(r.Files) - r.Parsed()
}

// NotLRC returns how many files were rejected as not LRC.
func (r *Result) NotLRC() int {
	n := 0
	for _, f := range r.Files {
		if f.NotLRC() {
			n++
		}
	}
	return n
}

// Intervals returns the total number of intervals across all files.
func (r *Result) Intervals() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Intervals)
	}
	return n
}

// Run decodes every path. Per-file failures, including format rejections
// and I/O errors, are recorded on the FileResult. Only cancellation of ctx
// makes Run itself return an error.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	start := time.Now()
	result := &Result{Files: make([]FileResult, len(paths))}
	if len(paths) == 0 {
		return result, nil
	}

	dec := opts.Decoder
	if dec == nil {
		dec = lrc.NewDecoder()
	}
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			fr := decodeFile(ctx, dec, path)
			if fr.Err != nil && ctx.Err() != nil && errors.Is(fr.Err, ctx.Err()) {
				return fr.Err
			}
			result.Files[i] = fr
			logResult(logger, fr)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch parse interrupted: %w", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

func decodeFile(ctx context.Context, dec *lrc.Decoder, path string) FileResult {
	start := time.Now()
	fr := FileResult{Path: path}

	src, err := source.OpenFile(path)
	if err != nil {
		fr.Err = err
		fr.Duration = time.Since(start)
		return fr
	}
	defer func() { _ = src.Close() }()

	fr.Intervals, fr.Stats, fr.Err = dec.DecodeStats(ctx, src)
	fr.Duration = time.Since(start)
	return fr
}

func logResult(logger logrus.FieldLogger, fr FileResult) {
	entry := logger.WithFields(logrus.Fields{
		"file":     fr.Path,
		"duration": fr.Duration,
	})
	switch {
	case fr.Err == nil:
		entry.WithField("intervals", len(fr.Intervals)).Info("parsed lyric file")
	case fr.NotLRC():
		entry.WithError(fr.Err).Warn("not an LRC file")
	default:
		entry.WithError(fr.Err).Error("failed to parse lyric file")
	}
}
