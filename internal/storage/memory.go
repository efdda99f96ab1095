package storage

import (
	"fmt"
	"sync"
)

// MemoryStore implements Store in memory for tests.
type MemoryStore struct {
	values map[string][]byte
	puts   int
	// PutErr, when set, is returned by every Put.
	PutErr error
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Put(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.puts++
	if m.PutErr != nil {
		return m.PutErr
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Puts reports how many times Put was called, including failed calls.
func (m *MemoryStore) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}
