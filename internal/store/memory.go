package store

import (
	"context"
	"sync"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

// MemoryStore is an in-memory ProfileStore used in tests and offline runs.
// Writes are last-writer-wins per user id.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]schema.StoredProfile
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]schema.StoredProfile)}
}

func (m *MemoryStore) Put(ctx context.Context, profile schema.StoredProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.Questionnaire.UserID] = profile
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (*schema.StoredProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	// Copy so callers cannot mutate stored state through the pointer.
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Delete(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.profiles[userID]
	delete(m.profiles, userID)
	return ok, nil
}
