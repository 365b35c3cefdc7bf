package memory

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/felixgeelhaar/learnhub/internal/storage"
)

// Store keeps values in a map. Values are copied on the way in and out.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Store = (*Store)(nil)

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get implements storage.Store
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return slices.Clone(v), nil
}

// Set implements storage.Store
func (s *Store) Set(ctx context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = slices.Clone(value)
	return nil
}

// Remove implements storage.Store
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys returns the stored keys in sorted order
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
