package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and for running without any
// external service. Values are copied on the way in and out.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte

	// SetErr, when non-nil, is returned by every Set. Tests use it to
	// exercise write-failure paths.
	SetErr error

	// SetCalls counts successful writes; the debounce tests assert on it.
	SetCalls int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	s.SetCalls++
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
