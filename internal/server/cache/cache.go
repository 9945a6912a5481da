// Package cache is the read-side cart cache in front of the repository.
package cache

import (
	"context"
	"errors"

	"domcart/internal/domain"
)

// ErrCacheMiss reports that the key is absent; any other error is a real
// cache failure the service logs but survives.
var ErrCacheMiss = errors.New("cart cache miss")

type CartCache interface {
	Get(ctx context.Context, userID string) ([]domain.CartItem, error)
	Set(ctx context.Context, userID string, items []domain.CartItem) error
	Delete(ctx context.Context, userID string) error
}
