// Package buildstore keeps a local history of target runs in SQLite.
package buildstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one completed target run.
type Record struct {
	ID        string
	Target    string // build, linkcheck, deploy, ...
	Mode      string // generator mode for build targets, empty otherwise
	StartedAt time.Time
	Duration  time.Duration
	Outcome   string // success, failed, warnings
	Warnings  int
}

// Store implements the build history on SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (and initializes) the history database.
// Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		mode TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		warnings INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	CREATE INDEX IF NOT EXISTS idx_builds_target ON builds(target);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends a completed target run.
func (s *Store) Record(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (id, target, mode, started_at, duration_ms, outcome, warnings) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Target, rec.Mode, rec.StartedAt.Unix(), rec.Duration.Milliseconds(), rec.Outcome, rec.Warnings,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns the newest n records, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, target, mode, started_at, duration_ms, outcome, warnings FROM builds ORDER BY started_at DESC, id LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var started, durationMS int64
		if err := rows.Scan(&rec.ID, &rec.Target, &rec.Mode, &started, &durationMS, &rec.Outcome, &rec.Warnings); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		rec.StartedAt = time.Unix(started, 0)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
