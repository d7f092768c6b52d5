package memory

import (
	"context"
	"sync"

	portstore "github.com/alanyang/promptbox/internal/port/store"
)

// Store is a map-backed key-value store for tests and ephemeral runs.
// It implements the Store port but not the Watcher port — a single-process
// store has no external writers to observe.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewStore() *Store {
	return &Store{entries: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, portstore.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.mu.Lock()
	s.entries[key] = stored
	s.mu.Unlock()
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string][]byte)
	s.mu.Unlock()
	return nil
}
