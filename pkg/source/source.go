// Package source provides line streams for the LRC decoder.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxLineSize is the longest line a source will return.
const MaxLineSize = 1024 * 1024

const utf8BOM = "\ufeff"

// ReaderSource streams lines from an io.Reader.
// Line endings (\n or \r\n) are stripped, as is a leading UTF-8 byte order mark.
type ReaderSource struct {
	scanner *bufio.Scanner
	name    string
	lineNum int
}

// NewReaderSource creates a source reading from r. The name is used in errors.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &ReaderSource{scanner: scanner, name: name}
}

// Next returns the next line.
// Returns io.EOF when the reader is exhausted.
func (s *ReaderSource) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", fmt.Errorf("reading %s: %w", s.name, err)
		}
		return "", io.EOF
	}

	s.lineNum++
	line := s.scanner.Text()
	if s.lineNum == 1 {
		line = strings.TrimPrefix(line, utf8BOM)
	}
	return line, nil
}

// LineNum returns the 1-based number of the last line returned.
func (s *ReaderSource) LineNum() int {
	return s.lineNum
}

// Name returns the name given at construction.
func (s *ReaderSource) Name() string {
	return s.name
}

// FileSource streams lines from a file on disk.
type FileSource struct {
	*ReaderSource
	file *os.File
}

// OpenFile opens path for line-by-line reading.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening lyric file %s: %w", path, err)
	}
	return &FileSource{
		ReaderSource: NewReaderSource(f, path),
		file:         f,
	}, nil
}

// Close releases the file handle.
func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// SliceSource streams lines from memory.
type SliceSource struct {
	lines []string
	pos   int
}

// NewSliceSource creates a source over lines.
func NewSliceSource(lines []string) *SliceSource {
	return &SliceSource{lines: lines}
}

// Next returns the next line.
// Returns io.EOF after the last line.
func (s *SliceSource) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}
