package cart

import (
	"context"
	"sync"

	"github.com/noah-isme/toko-checkout/internal/customer"
)

type memoryCart struct {
	ownerID int64
	items   []Item
}

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[int64]memoryCart
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[int64]memoryCart)}
}

// Put stores a copy of items as the content of cartID owned by ownerID.
func (s *MemoryStore) Put(cartID, ownerID int64, items ...Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cartID] = memoryCart{ownerID: ownerID, items: append([]Item(nil), items...)}
}

// GetForCustomer implements Store.
func (s *MemoryStore) GetForCustomer(_ context.Context, cartID int64, owner customer.Customer) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.carts[cartID]
	if !ok || stored.ownerID != owner.ID {
		return Cart{}, ErrNotFound
	}
	return Cart{
		ID:       cartID,
		Customer: owner,
		Items:    append([]Item(nil), stored.items...),
	}, nil
}
