// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"context"
	"errors"
	"slices"

	"purse/internal/models"
	"purse/internal/money"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrEmailTaken       = errors.New("email has already been taken")
	ErrAccountNotLocked = errors.New("account was not locked in this transaction")
)

// LedgerTx is the set of writes available inside one atomic unit.
// Accounts must be locked before their balance is read or written.
type LedgerTx interface {
	// LockAccounts takes an exclusive lock on every id, in ascending id order,
	// and returns the locked rows keyed by id. Duplicate ids are locked once.
	LockAccounts(ids ...uint) (map[uint]*models.Account, error)
	UpdateBalance(accountID uint, balance money.Money) error
	CreateEntry(entry *models.LedgerEntry) error
}

// LedgerStore runs fn as one atomic unit: every write made through the
// LedgerTx commits together, or none does. A non-nil error from fn, or a
// context cancelled before commit, rolls the unit back and releases all locks.
type LedgerStore interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// AccountRepository covers account reads and the non-balance writes.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ListEntries(ctx context.Context, accountID uint, limit, offset int) ([]models.LedgerEntry, int64, error)
	IncrementTokenVersion(ctx context.Context, id uint) (int, error)
}

// UniqueIDs returns ids deduplicated and sorted ascending, the lock order
// shared by every LedgerStore implementation.
func UniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
