package conversation

import (
	"context"
	"sync"
)

// MemoryStore keeps histories in process memory. Histories are lost on
// restart; use it for local development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	histories map[string]History
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{histories: make(map[string]History)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return History{}.Append(s.histories[id]...), nil
}

func (s *MemoryStore) Put(_ context.Context, id string, history History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[id] = History{}.Append(history...)
	return nil
}
