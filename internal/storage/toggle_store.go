// Package storage persists letterbox state on disk.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/philMorel/letterbox"
	_ "modernc.org/sqlite"
)

const toggleSchema = `
CREATE TABLE IF NOT EXISTS local_storage (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("storage: store closed")

// SQLiteToggleStore is a string key/value store backed by SQLite. It
// implements letterbox.ToggleStore.
type SQLiteToggleStore struct {
	mu sync.RWMutex
	db *sql.DB
}

var _ letterbox.ToggleStore = (*SQLiteToggleStore)(nil)

// OpenToggleStore opens or creates the database at path. The special path
// ":memory:" keeps the store in memory.
func OpenToggleStore(path string) (*SQLiteToggleStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(toggleSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteToggleStore{db: db}, nil
}

// Get returns the value stored under key and whether it exists.
func (s *SQLiteToggleStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return "", false, ErrStoreClosed
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *SQLiteToggleStore) Set(key, value string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(`
		INSERT INTO local_storage (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Close closes the database. Closing twice is a no-op.
func (s *SQLiteToggleStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
