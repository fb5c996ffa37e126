package memory

import (
	"context"
	"sync"
)

// Store persists a room's records between ticks. Load happens before the
// tick's first decision, Save after its last.
type Store interface {
	Load(ctx context.Context) (*Table, error)
	Save(ctx context.Context, t *Table) error
	Close() error
}

// MemStore keeps records in process memory. Suitable for tests and for a
// sidecar that does not need to survive restarts.
type MemStore struct {
	mu    sync.Mutex
	table *Table
}

func NewMemStore() *MemStore {
	return &MemStore{table: NewTable()}
}

func (m *MemStore) Load(ctx context.Context) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Clone(), nil
}

func (m *MemStore) Save(ctx context.Context, t *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = t.Clone()
	return nil
}

func (m *MemStore) Close() error { return nil }
