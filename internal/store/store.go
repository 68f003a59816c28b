package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/avakulenko/grindlog/internal/bus"
)

const currentVersion = 1

// Store is the durable source of truth for sessions, settings and the
// in-progress session state. Every mutation is broadcast on the bus so
// observing contexts can re-read the changed key.
type Store struct {
	db  *sql.DB
	bus *bus.Bus
}

// New opens (or creates) the SQLite database at dbPath and runs
// migrations. Changes are published on b; a nil bus disables
// notifications.
func New(dbPath string, b *bus.Bus) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, bus: b}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:", nil)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Bus returns the notification bus the store publishes on (may be nil).
func (s *Store) Bus() *bus.Bus { return s.bus }

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS sessions (
		id               TEXT PRIMARY KEY,
		overall_start    TEXT NOT NULL,
		overall_end      TEXT NOT NULL,
		overall_duration INTEGER NOT NULL DEFAULT 0,
		overall_profit   REAL NOT NULL DEFAULT 0,
		overall_hands    INTEGER NOT NULL DEFAULT 0,
		hands_played     INTEGER NOT NULL DEFAULT 0,
		notes            TEXT NOT NULL DEFAULT '',
		periods          TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(overall_start);

	CREATE TABLE IF NOT EXISTS theory_sessions (
		id         TEXT PRIMARY KEY,
		topic      TEXT NOT NULL DEFAULT '',
		duration   INTEGER NOT NULL DEFAULT 0,
		notes      TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		end_time   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id    INTEGER PRIMARY KEY CHECK (id = 1),
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS app_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// publish broadcasts the new serialized value of key, or a cleared
// sentinel when value is nil.
func (s *Store) publish(key string, value any) {
	if s.bus == nil {
		return
	}
	var raw json.RawMessage
	if value != nil {
		data, err := json.Marshal(value)
		if err != nil {
			log.Printf("store: marshal change for %s: %v", key, err)
			return
		}
		raw = data
	}
	s.bus.Publish(bus.Change{Key: key, Value: raw})
}

// ResetAll deletes every session, theory session, plan and setting.
// Destructive; callers gate it behind explicit confirmation.
func (s *Store) ResetAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM sessions",
		"DELETE FROM theory_sessions",
		"DELETE FROM settings",
		"DELETE FROM app_state",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}

	s.publish(bus.KeySessions, []Session{})
	s.publish(bus.KeyTheorySessions, []TheorySession{})
	s.publish(bus.KeySettings, DefaultSettings())
	s.publish(bus.KeyActiveSession, nil)
	s.publish(bus.KeyCompletedSession, nil)
	return nil
}
