package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteFile = "state.db"

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteStore keeps all keys in a single kv table in <basePath>/state.db.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if needed) the state database under basePath.
func NewSQLiteStore(basePath string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(basePath, dirPermission); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	dbPath := filepath.Join(basePath, sqliteFile)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers; sqlite would otherwise return
	// SQLITE_BUSY under concurrent Put calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createKVTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	logger.Debug("opened state database", slog.String("path", dbPath))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Get returns the value stored under key, or an error wrapping ErrNotFound.
func (s *SQLiteStore) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value.
func (s *SQLiteStore) Put(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	s.logger.Debug("saved state", slog.String("key", key), slog.Int("bytes", len(value)))
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
