// Package ledger keeps a persistent history of report runs in SQLite.
// Batch and watch mode append one entry per study; the history command
// reads them back.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed run ledger.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the ledger database.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
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
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		study TEXT NOT NULL,
		outcome TEXT NOT NULL,
		output_path TEXT,
		error TEXT,
		timestamp INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_id ON runs(run_id);
	CREATE INDEX IF NOT EXISTS idx_study ON runs(study);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Entry is one study outcome within a run.
type Entry struct {
	ID         int64
	RunID      string
	Study      string
	Outcome    string // success|failed|skipped
	OutputPath string
	Error      string
	Timestamp  time.Time
	DurationMS int64
}

// Record appends an entry to the ledger.
func (s *Store) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, study, outcome, output_path, error, timestamp, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.RunID, e.Study, e.Outcome, e.OutputPath, e.Error, ts.Unix(), e.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert run entry: %w", err)
	}
	return nil
}

// ByRun retrieves all entries for a specific run in insertion order.
func (s *Store) ByRun(ctx context.Context, runID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, study, outcome, output_path, error, timestamp, duration_ms FROM runs WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Recent retrieves the most recent entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, study, outcome, output_path, error, timestamp, duration_ms FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.Study, &e.Outcome, &e.OutputPath, &e.Error, &ts, &e.DurationMS); err != nil {
			return nil, fmt.Errorf("scan run entry: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run entries: %w", err)
	}
	return entries, nil
}
