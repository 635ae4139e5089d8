package settings

import (
	"context"
	"sync"
)

// MemoryStore keeps settings in process memory. Used for local runs and
// whenever no external store is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	value *Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(_ context.Context) (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.value == nil {
		return Defaults(), nil
	}
	return *m.value, nil
}

func (m *MemoryStore) Save(_ context.Context, s Settings) error {
	s = s.withDefaults()
	m.mu.Lock()
	m.value = &s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
