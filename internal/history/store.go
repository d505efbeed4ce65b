// Package history persists build reports to SQLite so the CLI can show what
// recent builds did.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/folio/internal/build"
)

// Store is a SQLite-backed build-history store. It implements the build
// pipeline's HistorySink interface.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Entry is one recorded build.
type Entry struct {
	BuildID       string
	Mode          string
	Outcome       string
	StartedAt     time.Time
	DurationMS    int64
	PagesRendered int
	Warnings      int
	Errors        int
	Issues        []build.Issue
}

// Open opens (or creates) a history database. Use ":memory:" for tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		outcome TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages_rendered INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		errors INTEGER NOT NULL,
		issues TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordBuild persists one finished build report.
func (s *Store) RecordBuild(report *build.BuildReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issues, err := json.Marshal(report.Issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO builds (build_id, mode, outcome, started_at, duration_ms, pages_rendered, warnings, errors, issues)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.BuildID,
		string(report.Mode),
		string(report.Outcome),
		report.StartTime.Unix(),
		report.Duration.Milliseconds(),
		report.PagesRendered,
		len(report.Warnings()),
		len(report.Errors()),
		issues,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns the latest n builds, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT build_id, mode, outcome, started_at, duration_ms, pages_rendered, warnings, errors, issues
		 FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedAt int64
		var issues []byte
		if err := rows.Scan(&e.BuildID, &e.Mode, &e.Outcome, &startedAt, &e.DurationMS,
			&e.PagesRendered, &e.Warnings, &e.Errors, &issues); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		e.StartedAt = time.Unix(startedAt, 0)
		if len(issues) > 0 {
			if err := json.Unmarshal(issues, &e.Issues); err != nil {
				return nil, fmt.Errorf("unmarshal issues: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
