package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the slot in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore creates an empty in-memory slot.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read returns a copy of the slot contents.
func (m *MemoryStore) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

// Write replaces the slot contents.
func (m *MemoryStore) Write(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = append([]byte{}, data...)
	return nil
}

// Purge empties the slot.
func (m *MemoryStore) Purge(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = nil
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
