package storage

import (
	"context"
	"sync"
)

// MemoryBackend is an in-memory implementation of Backend for testing.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]DocumentRecord
}

// NewMemoryBackend creates a new in-memory snapshot store.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		records: make(map[string]DocumentRecord),
	}
}

// SaveDocument implements Backend.
func (m *MemoryBackend) SaveDocument(ctx context.Context, record DocumentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.URI] = record
	return nil
}

// DeleteDocument implements Backend.
func (m *MemoryBackend) DeleteDocument(ctx context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, uri)
	return nil
}

// LoadAll implements Backend.
func (m *MemoryBackend) LoadAll(ctx context.Context, fn func(DocumentRecord) error) error {
	m.mu.RLock()
	records := make([]DocumentRecord, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, record)
	}
	m.mu.RUnlock()

	for _, record := range records {
		if err := fn(record); err != nil {
			return err
		}
	}
	return nil
}

// DocumentCount implements Backend.
func (m *MemoryBackend) DocumentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}
