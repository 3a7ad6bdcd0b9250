// Package localstore is the single-file SQLite gateway, for running
// without a PostgreSQL server. It implements the same methods as storage.DB.
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/meltforce/guitardaily/internal/models"
	_ "modernc.org/sqlite"
)

// Timestamps are stored as fixed-width UTC text so that string order is time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		login        TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		last_seen    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS exercises (
		user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		id          TEXT NOT NULL,
		title       TEXT NOT NULL,
		bpm_min     INTEGER NOT NULL,
		bpm_max     INTEGER NOT NULL,
		music_key   TEXT NOT NULL DEFAULT '',
		est_minutes INTEGER NOT NULL,
		difficulty  TEXT NOT NULL,
		notes       TEXT NOT NULL DEFAULT '',
		tags        TEXT NOT NULL DEFAULT '[]',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		id          TEXT NOT NULL,
		exercise_id TEXT NOT NULL,
		bpm_used    INTEGER NOT NULL,
		status      TEXT NOT NULL,
		ts          TEXT NOT NULL,
		notes       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_user_ts ON attempts (user_id, ts DESC)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		id            TEXT NOT NULL,
		date          TEXT NOT NULL,
		total_planned INTEGER NOT NULL,
		items         TEXT NOT NULL DEFAULT '[]',
		created_at    TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS import_logs (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id            INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at         TEXT NOT NULL,
		source             TEXT NOT NULL,
		status             TEXT NOT NULL,
		exercises_received INTEGER NOT NULL DEFAULT 0,
		exercises_inserted INTEGER NOT NULL DEFAULT 0,
		attempts_received  INTEGER NOT NULL DEFAULT 0,
		attempts_inserted  INTEGER NOT NULL DEFAULT 0,
		sessions_received  INTEGER NOT NULL DEFAULT 0,
		sessions_inserted  INTEGER NOT NULL DEFAULT 0,
		skipped            INTEGER NOT NULL DEFAULT 0,
		duration_ms        INTEGER,
		error_message      TEXT,
		metadata           TEXT
	)`,
}

// Store is a SQLite-backed practice repository.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite allows one writer; one connection also keeps :memory: shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range append([]string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"}, schema...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing schema: %w", err)
		}
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}
