package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ccollicutt/lrcparse/pkg/lrc"
)

const sampleLyrics = "[ar:Someone]\n[00:12.00]Line one\n[00:17.20]Line two\n[00:21.10]Line three\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_MixedInputs(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.lrc", sampleLyrics)
	notLRC := writeFile(t, dir, "notes.lrc", strings.Repeat("plain prose\n", 30))
	missing := filepath.Join(dir, "missing.lrc")

	logger, hook := test.NewNullLogger()
	result, err := Run(context.Background(), []string{good, notLRC, missing}, Options{
		Concurrency: 2,
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Files) != 3 {
		t.Fatalf("Files = %d, want 3", len(result.Files))
	}
	for i, want := range []string{good, notLRC, missing} {
		if result.Files[i].Path != want {
			t.Errorf("Files[%d].Path = %q, want %q", i, result.Files[i].Path, want)
		}
	}

	if result.Files[0].Err != nil {
		t.Errorf("good file error = %v", result.Files[0].Err)
	}
	if got := len(result.Files[0].Intervals); got != 3 {
		t.Errorf("good file intervals = %d, want 3", got)
	}
	if !result.Files[1].NotLRC() {
		t.Errorf("notes.lrc error = %v, want ErrNotThisFormat", result.Files[1].Err)
	}
	if result.Files[2].Err == nil || result.Files[2].NotLRC() {
		t.Errorf("missing file error = %v, want I/O error", result.Files[2].Err)
	}

	if result.Parsed() != 1 || result.Failed() != 2 || result.NotLRC() != 1 {
		t.Errorf("Parsed/Failed/NotLRC = %d/%d/%d, want 1/2/1", result.Parsed(), result.Failed(), result.NotLRC())
	}
	if result.Intervals() != 3 {
		t.Errorf("Intervals() = %d, want 3", result.Intervals())
	}

	levels := map[logrus.Level]int{}
	for _, e := range hook.AllEntries() {
		levels[e.Level]++
	}
	if levels[logrus.InfoLevel] != 1 || levels[logrus.WarnLevel] != 1 || levels[logrus.ErrorLevel] != 1 {
		t.Errorf("log levels = %v, want one info, warn and error", levels)
	}
}

func TestRun_UsesDecoderSearchTimeout(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "preamble.lrc", "title\nartist\nalbum\n[00:01.00]hello\n")

	result, err := Run(context.Background(), []string{path}, Options{
		Decoder: lrc.NewDecoder(lrc.WithSearchTimeout(2)),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Files[0].NotLRC() {
		t.Errorf("error = %v, want ErrNotThisFormat with timeout 2", result.Files[0].Err)
	}

	result, err = Run(context.Background(), []string{path}, Options{
		Decoder: lrc.NewDecoder(lrc.WithSearchTimeout(10)),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Files[0].Err != nil {
		t.Errorf("error = %v, want success with timeout 10", result.Files[0].Err)
	}
}

func TestRun_Empty(t *testing.T) {
	result, err := Run(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("Files = %d, want 0", len(result.Files))
	}
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 5)
	for i := range paths {
		paths[i] = writeFile(t, dir, fmt.Sprintf("%02d.lrc", i), sampleLyrics)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, paths, Options{Concurrency: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRun_ManyFiles(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 40)
	for i := range paths {
		paths[i] = writeFile(t, dir, fmt.Sprintf("song-%02d.lrc", i), sampleLyrics)
	}

	result, err := Run(context.Background(), paths, Options{Concurrency: 4})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Parsed() != len(paths) {
		t.Errorf("Parsed() = %d, want %d", result.Parsed(), len(paths))
	}
	for i, fr := range result.Files {
		if fr.Path != paths[i] {
			t.Fatalf("Files[%d].Path = %q, want %q", i, fr.Path, paths[i])
		}
	}
}
