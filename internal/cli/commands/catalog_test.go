package commands

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/lrcparse/pkg/catalog"
	"github.com/ccollicutt/lrcparse/pkg/config"
)

func TestRunImportAndSearch(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "db", "lyrics.db")
	song := writeLyrics(t, tmpDir, "song.lrc", songLyrics)
	notes := writeLyrics(t, tmpDir, "notes.lrc", notLyrics())

	out, _, err := runCommand(t, NewImportCommand(), "--db", dbPath, song, notes)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1 for the skipped file", ExitCode)
	}
	for _, want := range []string{
		"imported " + song + " (5 intervals)",
		"skipped  " + notes + ": not LRC",
		"1 of 2 files imported into " + dbPath,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("import output missing %q\n%s", want, out)
		}
	}

	out, _, err = runCommand(t, NewSearchCommand(), "--db", dbPath, "line 2")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "song.lrc #1  00:17.200 --> 00:21.100: Line 2 lyrics") {
		t.Errorf("search output = %q", out)
	}

	out, _, err = runCommand(t, NewSearchCommand(), "--db", dbPath, "chorus")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if out != "No matches for \"chorus\"\n" {
		t.Errorf("search output = %q", out)
	}
}

func TestRunSearch_JSON(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "lyrics.db")
	song := writeLyrics(t, tmpDir, "song.lrc", songLyrics)

	if _, _, err := runCommand(t, NewImportCommand(), "--db", dbPath, song); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	out, _, err := runCommand(t, NewSearchCommand(), "--db", dbPath, "-o", "json", "-l", "2", "lyrics")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	var hits []catalog.Hit
	if err := json.Unmarshal([]byte(out), &hits); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want limit 2", len(hits))
	}
	if hits[0].Seq != 0 || hits[0].Interval.StartMS != 12000 {
		t.Errorf("first hit = %+v", hits[0])
	}

	out, _, err = runCommand(t, NewSearchCommand(), "--db", dbPath, "-o", "json", "nothing here")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("empty JSON output = %q", out)
	}
}

func TestRunParse_Import(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "lyrics.db")
	song := writeLyrics(t, tmpDir, "song.lrc", songLyrics)
	t.Setenv(config.EnvCatalog, dbPath)

	if _, _, err := runCommand(t, NewParseCommand(), "-q", "--import", song); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// search falls back to the environment for the catalog path
	out, _, err := runCommand(t, NewSearchCommand(), "last")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "00:39.000 --> ?: last lyrics.") {
		t.Errorf("search output = %q", out)
	}
}

func TestRunCatalog_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	song := writeLyrics(t, tmpDir, "song.lrc", songLyrics)
	dbPath := filepath.Join(tmpDir, "lyrics.db")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"import without db", []string{song}, "no catalog"},
		{"import zero timeout", []string{"--db", dbPath, "--search-timeout", "0", song}, "search-timeout"},
		{"search without db", []string{"x"}, "no catalog"},
		{"search missing db", []string{"--db", filepath.Join(tmpDir, "missing.db"), "x"}, "catalog not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvCatalog, "")
			cmd := NewImportCommand()
			if strings.HasPrefix(tt.name, "search") {
				cmd = NewSearchCommand()
			}
			_, _, err := runCommand(t, cmd, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
