package fingerprint

import (
	"context"
	"sync"

	"assistant-ai/internal/storage"
)

// MemoryStore is a process-local storage.FingerprintStore.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]storage.FingerprintRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]storage.FingerprintRecord)}
}

func (m *MemoryStore) Get(_ context.Context, path string) (*storage.FingerprintRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &rec, nil
}

func (m *MemoryStore) Put(_ context.Context, rec *storage.FingerprintRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Path] = *rec
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, path)
	return nil
}
