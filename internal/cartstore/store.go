// Package cartstore keeps the client-side view of a shopping cart: an
// in-memory item collection persisted locally on every mutation and mirrored
// to the Cart API whenever an auth token is present. Items are keyed by
// domain name and their registration periods are corrected upward to the
// registrar minimum for their TLD, never rejected.
package cartstore

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"domcart/internal/domain"
	"domcart/internal/policy"
)

const defaultSaveDebounce = 250 * time.Millisecond

// Store is safe for concurrent use. Construct one per user session with New;
// there is no package-level singleton.
type Store struct {
	local   LocalStore
	tokens  TokenSource
	remote  RemoteCart
	logger  *slog.Logger
	metrics *Metrics

	debounce time.Duration

	// dirty has capacity one; marks coalesce until the saver drains it.
	dirty chan struct{}

	syncOnce sync.Once

	mu    sync.Mutex
	items []domain.CartItem
}

// Option configures a Store.
type Option func(*Store)

// WithSaveDebounce overrides how long the background saver waits after a
// mutation before pushing the cart, so bursts collapse into one request.
func WithSaveDebounce(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithMetrics attaches store metrics. A nil Metrics is valid and disables
// recording.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New rehydrates the store from local storage. Every rehydrated item is
// re-validated against the TLD minimum table; if anything was corrected the
// corrected set is written back locally and scheduled for a server push.
func New(ctx context.Context, local LocalStore, tokens TokenSource, remote RemoteCart, logger *slog.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		local:    local,
		tokens:   tokens,
		remote:   remote,
		logger:   logger,
		debounce: defaultSaveDebounce,
		dirty:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	items, err := local.LoadCart(ctx)
	if err != nil {
		return nil, err
	}
	s.items = items

	if policy.ClampAll(s.items) {
		s.metrics.RecordCorrection()
		s.persist(ctx)
		s.markDirty()
	}
	return s, nil
}

// AddItem validates the candidate against the TLD minimum-period table and
// either overwrites the entry holding the same domain name or appends a new
// one. It reports whether the registration period had to be corrected.
// Invalid-looking input is corrected silently, never refused.
func (s *Store) AddItem(ctx context.Context, item domain.CartItem) (corrected bool) {
	item.Currency = domain.NormalizeCurrency(item.Currency)
	item, corrected = policy.ClampPeriod(item)
	if corrected {
		s.metrics.RecordCorrection()
	}

	s.mu.Lock()
	idx := slices.IndexFunc(s.items, func(existing domain.CartItem) bool {
		return existing.DomainName == item.DomainName
	})
	if idx >= 0 {
		s.items[idx] = item
	} else {
		s.items = append(s.items, item)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.markDirty()
	return corrected
}

// ItemPatch is a partial update for UpdateItem; nil fields are left alone.
type ItemPatch struct {
	Price              *decimal.Decimal
	Currency           *string
	RegistrationPeriod *int
}

// UpdateItem shallow-merges the patch onto the entry matching domainName and
// is a no-op when absent. Unlike AddItem it does not re-run the
// minimum-period validation, so a patch can shrink the period below the TLD
// minimum until the next reconciliation pass corrects it.
func (s *Store) UpdateItem(ctx context.Context, domainName string, patch ItemPatch) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.items, func(existing domain.CartItem) bool {
		return existing.DomainName == domainName
	})
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	if patch.Price != nil {
		s.items[idx].Price = *patch.Price
	}
	if patch.Currency != nil {
		s.items[idx].Currency = domain.NormalizeCurrency(*patch.Currency)
	}
	if patch.RegistrationPeriod != nil {
		s.items[idx].RegistrationPeriod = *patch.RegistrationPeriod
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.markDirty()
}

// RemoveItem deletes the entry whose domain name matches exactly; absent
// entries are a no-op. Matching is case-sensitive.
func (s *Store) RemoveItem(ctx context.Context, domainName string) {
	s.mu.Lock()
	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(existing domain.CartItem) bool {
		return existing.DomainName == domainName
	})
	removed := len(s.items) != before
	if removed {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	if removed {
		s.markDirty()
	}
}

// ClearCart empties the collection.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.markDirty()
}

// Items returns a copy of the current collection in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// ItemCount is the number of distinct items, not total registration-years.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// SubtotalPrice sums price times registration period over all items,
// unrounded.
func (s *Store) SubtotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtotal := decimal.Zero
	for _, item := range s.items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// TotalPrice is the subtotal rounded to two decimal places. Tax and fees are
// the checkout collaborator's business, not this layer's.
func (s *Store) TotalPrice() decimal.Decimal {
	return s.SubtotalPrice().Round(2)
}

// persistLocked writes the collection to local storage. Failures are logged
// and swallowed; the in-memory cart stays authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	if err := s.local.SaveCart(ctx, s.items); err != nil {
		s.logger.WarnContext(ctx, "cart local persist failed", "error", err)
	}
}

func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked(ctx)
}

// token returns the bearer token, or "" when the user is anonymous or the
// token source failed.
func (s *Store) token(ctx context.Context) string {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "cart token lookup failed", "error", err)
		return ""
	}
	return token
}
