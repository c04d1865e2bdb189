// Package memory is an in-process implementation of the repositories
// interfaces. Each account has its own lock, taken in ascending id order, and
// writes are buffered per transaction and applied only on commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"purse/internal/models"
	"purse/internal/money"
	"purse/internal/repositories"
)

// Store keeps accounts and ledger entries in memory. It is safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	accounts      map[uint]*models.Account
	byEmail       map[string]uint
	entries       []models.LedgerEntry
	nextAccountID uint
	nextEntryID   uint

	locksMu sync.Mutex
	locks   map[uint]chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[uint]*models.Account),
		byEmail:  make(map[string]uint),
		locks:    make(map[uint]chan struct{}),
	}
}

// accountLock returns the one-slot semaphore guarding id.
func (s *Store) accountLock(id uint) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if _, exists := s.locks[id]; !exists {
		s.locks[id] = make(chan struct{}, 1)
	}
	return s.locks[id]
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repositories.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{
		store:    s,
		ctx:      ctx,
		locked:   make(map[uint]*models.Account),
		balances: make(map[uint]money.Money),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *Store) commit(tx *memoryTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, balance := range tx.balances {
		acc := s.accounts[id]
		acc.Balance = balance
		acc.UpdatedAt = now
	}
	for _, entry := range tx.entries {
		s.nextEntryID++
		entry.ID = s.nextEntryID
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		s.entries = append(s.entries, *entry)
	}
}

type memoryTx struct {
	store    *Store
	ctx      context.Context
	held     []chan struct{}
	locked   map[uint]*models.Account
	balances map[uint]money.Money
	entries  []*models.LedgerEntry
}

func (t *memoryTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		<-t.held[i]
	}
	t.held = nil
}

func (t *memoryTx) LockAccounts(ids ...uint) (map[uint]*models.Account, error) {
	out := make(map[uint]*models.Account, len(ids))
	for _, id := range repositories.UniqueIDs(ids) {
		if acc, ok := t.locked[id]; ok {
			out[id] = acc
			continue
		}

		sem := t.store.accountLock(id)
		select {
		case sem <- struct{}{}:
			t.held = append(t.held, sem)
		case <-t.ctx.Done():
			return nil, fmt.Errorf("lock account %d: %w", id, t.ctx.Err())
		}

		t.store.mu.RLock()
		acc, ok := t.store.accounts[id]
		var cp models.Account
		if ok {
			cp = *acc
		}
		t.store.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("lock account %d: %w", id, repositories.ErrAccountNotFound)
		}

		t.locked[id] = &cp
		out[id] = &cp
	}
	return out, nil
}

func (t *memoryTx) UpdateBalance(accountID uint, balance money.Money) error {
	acc, ok := t.locked[accountID]
	if !ok {
		return fmt.Errorf("update balance of account %d: %w", accountID, repositories.ErrAccountNotLocked)
	}
	next := *acc
	next.Balance = balance
	if err := next.Validate(); err != nil {
		return err
	}
	acc.Balance = balance
	t.balances[accountID] = balance
	return nil
}

func (t *memoryTx) CreateEntry(entry *models.LedgerEntry) error {
	if _, ok := t.locked[entry.AccountID]; !ok {
		return fmt.Errorf("create entry for account %d: %w", entry.AccountID, repositories.ErrAccountNotLocked)
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	t.entries = append(t.entries, entry)
	return nil
}

func (s *Store) Create(ctx context.Context, account *models.Account) error {
	account.Email = models.NormalizeEmail(account.Email)
	if account.TokenVersion == 0 {
		account.TokenVersion = 1
	}
	if err := account.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[account.Email]; taken {
		return repositories.ErrEmailTaken
	}
	s.nextAccountID++
	now := time.Now()
	account.ID = s.nextAccountID
	account.CreatedAt = now
	account.UpdatedAt = now

	cp := *account
	s.accounts[cp.ID] = &cp
	s.byEmail[cp.Email] = cp.ID
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return acc.Snapshot(), nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return s.accounts[id].Snapshot(), nil
}

func (s *Store) ListEntries(ctx context.Context, accountID uint, limit, offset int) ([]models.LedgerEntry, int64, error) {
	s.mu.RLock()
	var matched []models.LedgerEntry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if offset < 0 {
		offset = 0
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]models.LedgerEntry, end-offset)
	copy(out, matched[offset:end])
	return out, total, nil
}

func (s *Store) IncrementTokenVersion(ctx context.Context, id uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return 0, repositories.ErrAccountNotFound
	}
	acc.TokenVersion++
	return acc.TokenVersion, nil
}

// Compile-time checks.
var (
	_ repositories.LedgerStore       = (*Store)(nil)
	_ repositories.AccountRepository = (*Store)(nil)
)
