// Package service implements the Cart API's business rules: cache-aside
// reads, validated whole-cart replaces, and checkout.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"domcart/internal/domain"
	"domcart/internal/events"
	"domcart/internal/policy"
	"domcart/internal/server/cache"
	"domcart/internal/server/metrics"
	"domcart/internal/server/store"
)

// CheckoutPublisher receives the event emitted when a cart checks out.
type CheckoutPublisher interface {
	Publish(event events.CheckoutEvent)
}

// CartService owns a repository, an optional cache, and an optional checkout
// publisher. Nil cache and nil publisher are valid and disable those paths.
type CartService struct {
	repo      store.CartStore
	cache     cache.CartCache
	publisher CheckoutPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	sfg       singleflight.Group // collapses concurrent cache misses per user
}

func NewCartService(repo store.CartStore, cartCache cache.CartCache, publisher CheckoutPublisher, logger *slog.Logger, m *metrics.Metrics) *CartService {
	return &CartService{
		repo:      repo,
		cache:     cartCache,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// GetCart returns the user's cart, empty when none was ever saved. Reads go
// through the cache when one is configured; concurrent misses for the same
// user share a single store query.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	v, err, _ := s.sfg.Do(userID, func() (any, error) {
		if s.cache != nil {
			items, err := s.cache.Get(ctx, userID)
			if err == nil {
				s.metrics.RecordCacheHit()
				return items, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				s.logger.WarnContext(ctx, "cart cache get failed", "error", err)
			}
			s.metrics.RecordCacheMiss()
		}

		items, err := s.repo.GetCart(ctx, userID)
		if errors.Is(err, store.ErrCartNotFound) {
			return []domain.CartItem{}, nil
		}
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			go func() {
				cacheCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := s.cache.Set(cacheCtx, userID, items); err != nil {
					s.logger.Warn("cart cache set failed", "error", err)
				}
			}()
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	items := v.([]domain.CartItem)
	s.metrics.RecordRead()
	return items, nil
}

// ReplaceCart overwrites the user's stored cart wholesale. The server is the
// copy clients trust on merge, so every incoming item is re-validated
// against the TLD minimum table before it lands.
func (s *CartService) ReplaceCart(ctx context.Context, userID string, items []domain.CartItem) error {
	for i := range items {
		items[i].Currency = domain.NormalizeCurrency(items[i].Currency)
	}
	policy.ClampAll(items)

	if err := s.repo.ReplaceCart(ctx, userID, items); err != nil {
		return err
	}
	s.metrics.RecordWrite()
	s.invalidateCache(userID)
	return nil
}

// Checkout snapshots the cart, clears it, and hands the snapshot to the
// checkout publisher. An empty cart checks out to a no-op without error;
// the storefront disables the button, the API stays idempotent.
func (s *CartService) Checkout(ctx context.Context, userID string) error {
	items, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	if err := s.repo.DeleteCart(ctx, userID); err != nil {
		return err
	}
	s.invalidateCache(userID)

	if s.publisher != nil {
		total := decimalTotal(items)
		s.publisher.Publish(events.CheckoutEvent{
			UserID: userID,
			Items:  items,
			Total:  total,
		})
	}
	s.metrics.RecordCheckout()
	return nil
}

func (s *CartService) invalidateCache(userID string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidate failed", "error", err)
	}
}

func decimalTotal(items []domain.CartItem) string {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2).String()
}
