// Package store persists session history to SQLite so separate runs can
// exclude questions served earlier. The engine core never depends on it;
// history is loaded up front and handed to sessions as an exclusion set.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    ended_at TEXT
);

CREATE TABLE IF NOT EXISTS served_questions (
    session_id TEXT NOT NULL,
    question_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    minutes INTEGER NOT NULL,
    PRIMARY KEY (session_id, question_id),
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS skipped_questions (
    session_id TEXT NOT NULL,
    question_id TEXT NOT NULL,
    PRIMARY KEY (session_id, question_id),
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);
`

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// Open connects to the database at dsn, applies pragmas, and creates the
// schema when missing.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// applyPragmas configures SQLite for single-user use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// SessionRecord is one persisted session.
type SessionRecord struct {
	ID        string
	StartedAt time.Time
	EndedAt   *time.Time
}

// StartSession inserts a session row.
func (s *Store) StartSession(ctx context.Context, sessionID string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		sessionID, startedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// EndSession stamps a session's end time.
func (s *Store) EndSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ? WHERE id = ?`,
		endedAt.UTC().Format(time.RFC3339), sessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// RecordServed appends served question ids to a session's history in one
// transaction, preserving serve order.
func (s *Store) RecordServed(ctx context.Context, sessionID string, ids []string, minutesPer map[string]int) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM served_questions WHERE session_id = ?`,
		sessionID).Scan(&next); err != nil {
		return fmt.Errorf("next position: %w", err)
	}

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO served_questions (session_id, question_id, position, minutes) VALUES (?, ?, ?, ?)`,
			sessionID, id, next+i, minutesPer[id]); err != nil {
			return fmt.Errorf("insert served %q: %w", id, err)
		}
	}
	return tx.Commit()
}

// RecordSkipped marks a question as skipped within a session.
func (s *Store) RecordSkipped(ctx context.Context, sessionID, questionID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO skipped_questions (session_id, question_id) VALUES (?, ?)`,
		sessionID, questionID)
	if err != nil {
		return fmt.Errorf("insert skipped: %w", err)
	}
	return nil
}

// ServedIDs returns every question id ever served or skipped, across all
// sessions. Feeding this into a new session's exclusion set carries
// non-repetition across CLI invocations.
func (s *Store) ServedIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_id FROM served_questions
		UNION
		SELECT question_id FROM skipped_questions
		ORDER BY question_id`)
	if err != nil {
		return nil, fmt.Errorf("query served ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan served id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SessionServed returns the served ids of one session in serve order.
func (s *Store) SessionServed(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id FROM served_questions WHERE session_id = ? ORDER BY position`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session served: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session served: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Sessions lists persisted sessions, most recent first.
func (s *Store) Sessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var started string
		var ended sql.NullString
		if err := rows.Scan(&rec.ID, &started, &ended); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.StartedAt, err = time.Parse(time.RFC3339, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if ended.Valid {
			t, err := time.Parse(time.RFC3339, ended.String)
			if err != nil {
				return nil, fmt.Errorf("parse ended_at: %w", err)
			}
			rec.EndedAt = &t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DefaultDBPath resolves the history database path in priority order:
// QBANK_DB, then $XDG_DATA_HOME/qbank/qbank.db, then
// ~/.local/share/qbank/qbank.db.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QBANK_DB"); p != "" {
		return p, EnsureDir(p)
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	p := filepath.Join(dataHome, "qbank", "qbank.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if needed.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
