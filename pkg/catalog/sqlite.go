package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/ccollicutt/lrcparse/pkg/lrc"
)

// Store is a lyric catalog backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	mu     sync.Mutex
	random *rand.Rand
}

// Open opens or creates a catalog database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		path:   dbPath,
		random: rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- ULID entropy only
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) newID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), s.random).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id             TEXT PRIMARY KEY,
		path           TEXT NOT NULL UNIQUE,
		imported_at    TEXT NOT NULL,
		interval_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS intervals (
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		start_ms    INTEGER NOT NULL,
		end_ms      INTEGER NOT NULL,
		text        TEXT NOT NULL,
		PRIMARY KEY (document_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_intervals_start ON intervals(document_id, start_ms);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put stores the intervals decoded from path, replacing any earlier import
// of the same path.
func (s *Store) Put(ctx context.Context, path string, intervals []lrc.TimedInterval) (*Document, error) {
	now := time.Now().UTC()
	doc := &Document{
		ID:            s.newID(now),
		Path:          path,
		ImportedAt:    now,
		IntervalCount: len(intervals),
		Intervals:     intervals,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
		return nil, fmt.Errorf("remove previous import: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, path, imported_at, interval_count) VALUES (?, ?, ?, ?)`,
		doc.ID, doc.Path, now.Format(time.RFC3339Nano), doc.IntervalCount)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO intervals (document_id, seq, start_ms, end_ms, text) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare interval insert: %w", err)
	}
	defer stmt.Close()

	for i, iv := range intervals {
		if _, err := stmt.ExecContext(ctx, doc.ID, i, iv.StartMS, iv.EndMS, iv.Text()); err != nil {
			return nil, fmt.Errorf("insert interval %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return doc, nil
}

// Get returns the document imported from path with its intervals in order.
func (s *Store) Get(ctx context.Context, path string) (*Document, error) {
	doc := &Document{}
	var importedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, path, imported_at, interval_count FROM documents WHERE path = ?`, path).
		Scan(&doc.ID, &doc.Path, &importedAt, &doc.IntervalCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	doc.ImportedAt, _ = time.Parse(time.RFC3339Nano, importedAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT start_ms, end_ms, text FROM intervals WHERE document_id = ? ORDER BY seq`, doc.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doc.Intervals = make([]lrc.TimedInterval, 0, doc.IntervalCount)
	for rows.Next() {
		var iv lrc.TimedInterval
		var text string
		if err := rows.Scan(&iv.StartMS, &iv.EndMS, &text); err != nil {
			return nil, err
		}
		iv.Lines = []string{text}
		doc.Intervals = append(doc.Intervals, iv)
	}
	return doc, rows.Err()
}

// Search finds intervals whose text contains query, case-insensitively for
// ASCII. Results are ordered by path, then position in the file.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.path, i.seq, i.start_ms, i.end_ms, i.text
		FROM intervals i
		INNER JOIN documents d ON d.id = i.document_id
		WHERE i.text LIKE ? ESCAPE '\'
		ORDER BY d.path, i.seq
		LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var text string
		if err := rows.Scan(&h.DocumentID, &h.Path, &h.Seq, &h.Interval.StartMS, &h.Interval.EndMS, &text); err != nil {
			return nil, err
		}
		h.Interval.Lines = []string{text}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Stats returns catalog statistics.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&st.Documents); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM intervals`).Scan(&st.Intervals); err != nil {
		return nil, err
	}
	return st, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
