package cartstore

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"domcart/internal/domain"
)

type fakeLocal struct {
	mu    sync.Mutex
	items []domain.CartItem
	saves int
}

func (f *fakeLocal) LoadCart(_ context.Context) ([]domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items), nil
}

func (f *fakeLocal) SaveCart(_ context.Context, items []domain.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = slices.Clone(items)
	f.saves++
	return nil
}

type fakeTokens struct {
	token string
}

func (f *fakeTokens) Token(_ context.Context) (string, error) {
	return f.token, nil
}

type fakeRemote struct {
	mu sync.Mutex

	serverItems []domain.CartItem
	fetchOK     bool
	fetchErr    error
	replaceErr  error

	fetches  int
	replaces int
	lastPush []domain.CartItem
}

func (f *fakeRemote) FetchCart(_ context.Context, _ string) ([]domain.CartItem, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, false, f.fetchErr
	}
	return slices.Clone(f.serverItems), f.fetchOK, nil
}

func (f *fakeRemote) ReplaceCart(_ context.Context, _ string, items []domain.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaces++
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.lastPush = slices.Clone(items)
	f.serverItems = slices.Clone(items)
	return nil
}

func (f *fakeRemote) calls() (fetches, replaces int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches, f.replaces
}

func item(name string, price float64, years int) domain.CartItem {
	return domain.CartItem{
		DomainName:         name,
		Price:              decimal.NewFromFloat(price),
		Currency:           "INR",
		RegistrationPeriod: years,
	}
}

type StoreSuite struct {
	suite.Suite
	ctx    context.Context
	local  *fakeLocal
	tokens *fakeTokens
	remote *fakeRemote
	store  *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.local = &fakeLocal{}
	s.tokens = &fakeTokens{}
	s.remote = &fakeRemote{fetchOK: true}

	store, err := New(s.ctx, s.local, s.tokens, s.remote, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(s.T(), err)
	s.store = store
}

func (s *StoreSuite) TestAddItemRaisesPeriodToTLDMinimum() {
	corrected := s.store.AddItem(s.ctx, item("foo.ai", 1000, 1))

	assert.True(s.T(), corrected)
	items := s.store.Items()
	require.Len(s.T(), items, 1)
	assert.Equal(s.T(), 2, items[0].RegistrationPeriod)
}

func (s *StoreSuite) TestAddItemLeavesCompliantPeriodAlone() {
	corrected := s.store.AddItem(s.ctx, item("foo.com", 500, 1))

	assert.False(s.T(), corrected)
	items := s.store.Items()
	require.Len(s.T(), items, 1)
	assert.Equal(s.T(), 1, items[0].RegistrationPeriod)
}

func (s *StoreSuite) TestAddItemCaseInsensitiveTLDLookup() {
	corrected := s.store.AddItem(s.ctx, item("foo.AI", 1000, 1))

	assert.True(s.T(), corrected)
	assert.Equal(s.T(), 2, s.store.Items()[0].RegistrationPeriod)
}

func (s *StoreSuite) TestRepeatedAddKeepsOneEntryWithLatestFields() {
	s.store.AddItem(s.ctx, item("foo.com", 500, 1))
	s.store.AddItem(s.ctx, item("bar.com", 300, 1))
	s.store.AddItem(s.ctx, item("foo.com", 750, 3))

	items := s.store.Items()
	require.Len(s.T(), items, 2)
	// The slot is retained, not re-appended.
	assert.Equal(s.T(), "foo.com", items[0].DomainName)
	assert.True(s.T(), items[0].Price.Equal(decimal.NewFromInt(750)))
	assert.Equal(s.T(), 3, items[0].RegistrationPeriod)
}

func (s *StoreSuite) TestTotals() {
	s.store.AddItem(s.ctx, item("foo.com", 1200, 2))
	s.store.AddItem(s.ctx, item("bar.com", 800, 1))

	assert.True(s.T(), s.store.SubtotalPrice().Equal(decimal.NewFromInt(3200)))
	assert.Equal(s.T(), "3200", s.store.TotalPrice().String())
	assert.Equal(s.T(), 2, s.store.ItemCount())
}

func (s *StoreSuite) TestTotalRoundsToTwoDecimals() {
	s.store.AddItem(s.ctx, domain.CartItem{
		DomainName:         "foo.com",
		Price:              decimal.RequireFromString("3.333"),
		Currency:           "USD",
		RegistrationPeriod: 3,
	})

	assert.Equal(s.T(), "9.999", s.store.SubtotalPrice().String())
	assert.Equal(s.T(), "10", s.store.TotalPrice().String())
}

func (s *StoreSuite) TestRemoveItemIsIdempotent() {
	s.store.AddItem(s.ctx, item("foo.com", 500, 1))

	s.store.RemoveItem(s.ctx, "missing.com")
	assert.Equal(s.T(), 1, s.store.ItemCount())

	s.store.RemoveItem(s.ctx, "foo.com")
	s.store.RemoveItem(s.ctx, "foo.com")
	assert.Equal(s.T(), 0, s.store.ItemCount())
}

func (s *StoreSuite) TestRemoveItemMatchesCaseSensitively() {
	s.store.AddItem(s.ctx, item("foo.com", 500, 1))

	s.store.RemoveItem(s.ctx, "FOO.com")
	assert.Equal(s.T(), 1, s.store.ItemCount())
}

func (s *StoreSuite) TestUpdateItemPatchesWithoutRevalidation() {
	s.store.AddItem(s.ctx, item("foo.ai", 1000, 2))

	one := 1
	newPrice := decimal.NewFromInt(1100)
	s.store.UpdateItem(s.ctx, "foo.ai", ItemPatch{Price: &newPrice, RegistrationPeriod: &one})

	items := s.store.Items()
	require.Len(s.T(), items, 1)
	assert.True(s.T(), items[0].Price.Equal(newPrice))
	// UpdateItem deliberately skips the minimum-period check.
	assert.Equal(s.T(), 1, items[0].RegistrationPeriod)
}

func (s *StoreSuite) TestUpdateItemAbsentIsNoOp() {
	price := decimal.NewFromInt(10)
	s.store.UpdateItem(s.ctx, "missing.com", ItemPatch{Price: &price})
	assert.Equal(s.T(), 0, s.store.ItemCount())
}

func (s *StoreSuite) TestClearCart() {
	s.store.AddItem(s.ctx, item("foo.com", 500, 1))
	s.store.ClearCart(s.ctx)
	assert.Equal(s.T(), 0, s.store.ItemCount())
	assert.True(s.T(), s.store.SubtotalPrice().IsZero())
}

func (s *StoreSuite) TestMutationsPersistLocally() {
	s.store.AddItem(s.ctx, item("foo.com", 500, 1))

	persisted, err := s.local.LoadCart(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), cmp.Diff(s.store.Items(), persisted))
}

func (s *StoreSuite) TestAnonymousMutationsNeverTouchTheServer() {
	s.store.AddItem(s.ctx, item("foo.com", 500, 1))
	s.store.SaveToServer(s.ctx)
	s.store.LoadFromServer(s.ctx)
	s.store.MergeWithServerCart(s.ctx)

	fetches, replaces := s.remote.calls()
	assert.Equal(s.T(), 0, fetches)
	assert.Equal(s.T(), 0, replaces)
	assert.Equal(s.T(), 1, s.store.ItemCount())
}

func (s *StoreSuite) TestRehydrationCorrectsPersistedPeriods() {
	local := &fakeLocal{items: []domain.CartItem{item("cheap.ai", 900, 1)}}

	store, err := New(s.ctx, local, s.tokens, s.remote, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(s.T(), err)

	items := store.Items()
	require.Len(s.T(), items, 1)
	assert.Equal(s.T(), 2, items[0].RegistrationPeriod)

	// The corrected set was written back to local storage.
	persisted, err := local.LoadCart(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), persisted, 1)
	assert.Equal(s.T(), 2, persisted[0].RegistrationPeriod)
}

func (s *StoreSuite) TestAddItemNormalizesCurrency() {
	s.store.AddItem(s.ctx, domain.CartItem{
		DomainName:         "foo.com",
		Price:              decimal.NewFromInt(10),
		Currency:           "usd",
		RegistrationPeriod: 1,
	})
	assert.Equal(s.T(), "USD", s.store.Items()[0].Currency)
}

func (s *StoreSuite) TestManyDistinctItemsStayDistinct() {
	count := 25
	for i := 0; i < count; i++ {
		s.store.AddItem(s.ctx, item(gofakeit.DomainName(), gofakeit.Price(10, 5000), 1))
	}
	// gofakeit may repeat a domain name; distinct count never exceeds adds.
	assert.LessOrEqual(s.T(), s.store.ItemCount(), count)
	assert.Greater(s.T(), s.store.ItemCount(), 0)
}
