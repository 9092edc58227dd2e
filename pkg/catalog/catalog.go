// Package catalog stores decoded lyrics in SQLite for later search.
package catalog

import (
	"errors"
	"time"

	"github.com/ccollicutt/lrcparse/pkg/lrc"
)

// ErrNotFound is returned when no document exists for a path.
var ErrNotFound = errors.New("document not found")

// Document is one imported lyric file.
type Document struct {
	ID            string              `json:"id"`
	Path          string              `json:"path"`
	ImportedAt    time.Time           `json:"imported_at"`
	IntervalCount int                 `json:"interval_count"`
	Intervals     []lrc.TimedInterval `json:"intervals,omitempty"`
}

// Hit is one interval matching a search.
type Hit struct {
	DocumentID string            `json:"document_id"`
	Path       string            `json:"path"`
	Seq        int               `json:"seq"`
	Interval   lrc.TimedInterval `json:"interval"`
}

// Stats holds catalog statistics.
type Stats struct {
	DBPath      string `json:"db_path"`
	DBSizeBytes int64  `json:"db_size_bytes"`
	Documents   int    `json:"documents"`
	Intervals   int    `json:"intervals"`
}
