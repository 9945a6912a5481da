package cartstore

import (
	"context"

	"domcart/internal/domain"
)

// LocalStore is the durable client-side slot the cart survives restarts in.
// Writes replace the whole cart; last writer wins.
type LocalStore interface {
	LoadCart(ctx context.Context) ([]domain.CartItem, error)
	SaveCart(ctx context.Context, items []domain.CartItem) error
}

// TokenSource yields the bearer token for the Cart API. An empty token means
// the user is anonymous and every server-touching operation becomes a no-op.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// RemoteCart is the Cart API as seen by the store. FetchCart returns
// ok=false when the server had no usable cart for the token (any non-2xx
// response); that is not an error.
type RemoteCart interface {
	FetchCart(ctx context.Context, token string) (items []domain.CartItem, ok bool, err error)
	ReplaceCart(ctx context.Context, token string, items []domain.CartItem) error
}
