package customer

import (
	"context"
	"sync"
)

// MemoryStore keeps customers in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	customers map[int64]Customer
}

// NewMemoryStore returns a store seeded with the given customers.
func NewMemoryStore(seed ...Customer) *MemoryStore {
	s := &MemoryStore{customers: make(map[int64]Customer, len(seed))}
	for _, c := range seed {
		s.customers[c.ID] = c
	}
	return s
}

// Put inserts or replaces a customer.
func (s *MemoryStore) Put(c Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id int64) (Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return c, nil
}
