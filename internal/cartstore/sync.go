package cartstore

import (
	"context"
	"errors"
	"net"
	"slices"
	"syscall"

	"domcart/internal/domain"
	"domcart/internal/policy"
)

// The server-touching operations below are best effort by contract: any
// network or server failure is caught here, logged at most, and leaves the
// in-memory cart exactly as it was. None of them report errors to callers.

// LoadFromServer fetches the user's server-side cart, validates every
// returned item against the TLD minimum table, and replaces the local
// collection with the result. Without a token, or when the server has no
// cart, the local collection is left untouched.
func (s *Store) LoadFromServer(ctx context.Context) {
	token := s.token(ctx)
	if token == "" {
		return
	}

	items, ok, err := s.remote.FetchCart(ctx, token)
	if err != nil {
		s.logFetchError(ctx, "cart load from server failed", err)
		return
	}
	if !ok {
		return
	}

	if policy.ClampAll(items) {
		s.metrics.RecordCorrection()
	}

	s.mu.Lock()
	s.items = items
	s.persistLocked(ctx)
	s.mu.Unlock()
}

// SaveToServer replaces the server's stored cart wholesale with the current
// collection. Last writer wins at the granularity of the whole array.
func (s *Store) SaveToServer(ctx context.Context) {
	token := s.token(ctx)
	if token == "" {
		return
	}

	items := s.Items()
	if err := s.remote.ReplaceCart(ctx, token, items); err != nil {
		s.metrics.RecordSaveFailure()
		s.logFetchError(ctx, "cart save to server failed", err)
		return
	}
	s.metrics.RecordSave()
}

// MergeWithServerCart unions the server cart with the local one, with server
// entries winning on domain-name collisions and purely-local entries
// appended, then pushes the merged result back. No-op without a token or
// with an empty local cart.
func (s *Store) MergeWithServerCart(ctx context.Context) {
	token := s.token(ctx)
	if token == "" || s.ItemCount() == 0 {
		return
	}

	serverItems, ok, err := s.remote.FetchCart(ctx, token)
	if err != nil {
		s.logFetchError(ctx, "cart merge fetch failed", err)
		return
	}
	if !ok {
		serverItems = nil // no server data: the union is just the local cart
	}

	s.mu.Lock()
	merged := unionByDomain(serverItems, s.items)
	if policy.ClampAll(merged) {
		s.metrics.RecordCorrection()
	}
	s.items = merged
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.SaveToServer(ctx)
}

// SyncWithServer reconciles a cart built anonymously with whatever the
// now-authenticated server already holds. It runs the reconciliation exactly
// once per store; later callers block until the first run finishes and then
// return. Neither side's items are discarded: an empty server cart is
// overwritten with the local one, otherwise the two are unioned with the
// server winning per domain name.
func (s *Store) SyncWithServer(ctx context.Context) {
	s.syncOnce.Do(func() {
		s.reconcile(ctx)
	})
}

func (s *Store) reconcile(ctx context.Context) {
	s.mu.Lock()
	before := slices.Clone(s.items)
	s.mu.Unlock()

	s.LoadFromServer(ctx)

	if len(before) > 0 {
		s.mu.Lock()
		if len(s.items) == 0 {
			s.items = before
		} else {
			s.items = unionByDomain(s.items, before)
		}
		s.mu.Unlock()
	}

	// Final validation pass regardless of which branch ran.
	s.mu.Lock()
	if policy.ClampAll(s.items) {
		s.metrics.RecordCorrection()
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	if len(before) > 0 {
		s.SaveToServer(ctx)
	}
}

// unionByDomain keeps every winner entry and appends the extras whose domain
// name is not already present, preserving order on both sides.
func unionByDomain(winners, extras []domain.CartItem) []domain.CartItem {
	merged := slices.Clone(winners)
	seen := make(map[string]struct{}, len(winners))
	for _, item := range winners {
		seen[item.DomainName] = struct{}{}
	}
	for _, item := range extras {
		if _, dup := seen[item.DomainName]; dup {
			continue
		}
		merged = append(merged, item)
	}
	return merged
}

// logFetchError logs a network failure unless it is one of the transient
// connection-reset/abort shapes that only add noise.
func (s *Store) logFetchError(ctx context.Context, msg string, err error) {
	if suppressible(err) {
		return
	}
	s.logger.WarnContext(ctx, msg, "error", err)
}

func suppressible(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE)
}
