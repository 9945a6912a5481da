// Package store persists per-user carts server-side. Writes always replace
// the whole cart; the Cart API's contract is last-writer-wins on the full
// array, not per-item patches.
package store

import (
	"context"
	"errors"

	"domcart/internal/domain"
)

// ErrCartNotFound reports that a user has never saved a cart. Callers treat
// it as an empty cart, not a failure.
var ErrCartNotFound = errors.New("cart not found")

type CartStore interface {
	// GetCart returns the user's cart in saved order, or ErrCartNotFound.
	GetCart(ctx context.Context, userID string) ([]domain.CartItem, error)
	// ReplaceCart overwrites the user's cart wholesale.
	ReplaceCart(ctx context.Context, userID string, items []domain.CartItem) error
	// DeleteCart removes the user's cart entirely; deleting an absent cart
	// is not an error.
	DeleteCart(ctx context.Context, userID string) error
}
