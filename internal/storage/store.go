package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNotFound is returned by Get for a key that was never written or has
// been deleted.
var ErrNotFound = errors.New("storage: key not found")

// Store is durable local key/value storage for client-side state such as the
// open-tab workspace. Values are opaque bytes.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open returns the Store for driver rooted at dir.
func Open(driver, dir string, logger *slog.Logger) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return NewJSONStore(dir, logger), nil
	case DriverSQLite:
		return NewSQLiteStore(dir, logger)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// validateKey checks that a key is safe for use as a filename.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key must not be empty")
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("key must not contain %q", "..")
	}
	if strings.ContainsAny(key, "/\\") {
		return fmt.Errorf("key must not contain path separators")
	}
	if strings.ContainsRune(key, 0) {
		return fmt.Errorf("key must not contain null bytes")
	}
	return nil
}
