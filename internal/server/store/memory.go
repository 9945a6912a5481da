package store

import (
	"context"
	"slices"
	"sync"

	"domcart/internal/domain"
)

// InMemoryStore keeps carts in a map. It backs unit tests and the
// no-database development mode of cmd/server.
type InMemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartItem
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{carts: make(map[string][]domain.CartItem)}
}

func (s *InMemoryStore) GetCart(_ context.Context, userID string) ([]domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return slices.Clone(items), nil
}

func (s *InMemoryStore) ReplaceCart(_ context.Context, userID string, items []domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = slices.Clone(items)
	return nil
}

func (s *InMemoryStore) DeleteCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}
