package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	stateDir       = "state"
	fileExt        = ".json"
	filePermission = 0644
	dirPermission  = 0755
)

// JSONStore keeps one file per key under <basePath>/state.
type JSONStore struct {
	basePath string
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewJSONStore creates a file-backed store. The directory is created lazily on
// the first Put.
func NewJSONStore(basePath string, logger *slog.Logger) *JSONStore {
	return &JSONStore{basePath: basePath, logger: logger}
}

func (s *JSONStore) Get(key string) ([]byte, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	s.logger.Debug("loaded state", slog.String("key", key), slog.Int("bytes", len(data)))
	return data, nil
}

func (s *JSONStore) Put(key string, value []byte) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), dirPermission); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := atomicWriteFile(path, value, filePermission); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	s.logger.Debug("saved state", slog.String("key", key), slog.String("path", path))
	return nil
}

func (s *JSONStore) Delete(key string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; files are closed after every operation.
func (s *JSONStore) Close() error { return nil }

// Keys lists every stored key.
func (s *JSONStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, stateDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read state directory: %w", err)
	}
	keys := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".tmp-") || filepath.Ext(name) != fileExt {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, fileExt))
	}
	return keys, nil
}

func (s *JSONStore) keyPath(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", fmt.Errorf("invalid key: %w", err)
	}
	path := filepath.Join(s.basePath, stateDir, key+fileExt)
	if err := s.verifyPathInStateDir(path); err != nil {
		return "", err
	}
	return path, nil
}

// verifyPathInStateDir checks that the resolved path stays inside the state
// directory.
func (s *JSONStore) verifyPathInStateDir(path string) error {
	base := filepath.Join(s.basePath, stateDir)
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return fmt.Errorf("path outside state directory: %w", err)
	}
	if strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path %q escapes state directory", path)
	}
	return nil
}

// atomicWriteFile writes to a temp file in the target directory, syncs it and
// renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
