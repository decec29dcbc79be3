package persistence

import (
	"bytes"
	"context"
	"sync"
)

// InMemorySlot is a simple, goroutine-safe Slot backed by a map.
// It is not durable and is meant for tests and throwaway sessions.
type InMemorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewInMemorySlot creates a new InMemorySlot.
func NewInMemorySlot() *InMemorySlot {
	return &InMemorySlot{
		values: make(map[string][]byte),
	}
}

// Ensure InMemorySlot implements Slot.
var _ Slot = (*InMemorySlot)(nil)

func (s *InMemorySlot) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return bytes.Clone(v), nil
}

func (s *InMemorySlot) Set(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = bytes.Clone(data)
	return nil
}
