package ledger

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"purse/internal/models"
	"purse/internal/money"
	"purse/internal/repositories"
	"purse/internal/repositories/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// storeLookup resolves recipients straight from the store.
type storeLookup struct{ repo repositories.AccountRepository }

func (l storeLookup) Lookup(ctx context.Context, key string) (*models.Account, error) {
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		return l.repo.GetByID(ctx, uint(id))
	}
	return l.repo.GetByEmail(ctx, key)
}

type fakeCache struct {
	mu          sync.Mutex
	balances    map[uint]money.Money
	versions    map[uint]int64
	invalidated []uint
	// beforeSet runs on SetBalance before the version check.
	beforeSet func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{balances: map[uint]money.Money{}, versions: map[uint]int64{}}
}

func (c *fakeCache) GetBalance(_ context.Context, id uint) (money.Money, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.balances[id]
	return b, ok, nil
}

func (c *fakeCache) BalanceVersion(_ context.Context, id uint) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[id], nil
}

func (c *fakeCache) SetBalance(_ context.Context, id uint, b money.Money, version int64) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[id] == version {
		c.balances[id] = b
	}
	return nil
}

func (c *fakeCache) InvalidateBalance(_ context.Context, ids ...uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.balances, id)
		c.versions[id]++
	}
	c.invalidated = append(c.invalidated, ids...)
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*models.LedgerEntry
	// onPublish, when set, replaces recording and sees the publish context.
	onPublish func(ctx context.Context) error
}

func (p *fakePublisher) PublishEntries(ctx context.Context, entries ...*models.LedgerEntry) error {
	if p.onPublish != nil {
		return p.onPublish(ctx)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, entries...)
	return nil
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordOperationDuration(op string, d time.Duration) { m.Called(op, d) }
func (m *MockMetrics) RecordOperationResult(op, result string)           { m.Called(op, result) }
func (m *MockMetrics) RecordCacheHit(op string)                          { m.Called(op) }
func (m *MockMetrics) RecordCacheMiss(op string)                         { m.Called(op) }

// faultyStore lets a test fail a specific entry write inside the atomic unit.
type faultyStore struct {
	repositories.LedgerStore
	failEntry func(*models.LedgerEntry) error
}

func (f *faultyStore) WithinTx(ctx context.Context, fn func(tx repositories.LedgerTx) error) error {
	return f.LedgerStore.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		return fn(&faultyTx{LedgerTx: tx, failEntry: f.failEntry})
	})
}

type faultyTx struct {
	repositories.LedgerTx
	failEntry func(*models.LedgerEntry) error
}

func (t *faultyTx) CreateEntry(e *models.LedgerEntry) error {
	if err := t.failEntry(e); err != nil {
		return err
	}
	return t.LedgerTx.CreateEntry(e)
}

type fixture struct {
	store     *memory.Store
	svc       *Service
	cache     *fakeCache
	publisher *fakePublisher
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{store: store, cache: newFakeCache(), publisher: &fakePublisher{}}
	opts = append([]Option{
		WithClock(fixedClock{testNow}),
		WithCache(f.cache),
		WithPublisher(f.publisher),
	}, opts...)
	f.svc = NewService(store, store, storeLookup{store}, nil, opts...)
	return f
}

func (f *fixture) account(t *testing.T, email, balance string) *models.Account {
	t.Helper()
	acc := &models.Account{Email: email, Balance: money.MustParse(balance)}
	require.NoError(t, f.store.Create(context.Background(), acc))
	return acc
}

func (f *fixture) balance(t *testing.T, id uint) string {
	t.Helper()
	acc, err := f.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance.String()
}

func (f *fixture) entries(t *testing.T, id uint) []models.LedgerEntry {
	t.Helper()
	entries, _, err := f.store.ListEntries(context.Background(), id, 0, 0)
	require.NoError(t, err)
	return entries
}
