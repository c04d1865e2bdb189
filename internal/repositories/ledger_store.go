package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"purse/internal/models"
	"purse/internal/money"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormLedgerStore struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewLedgerStore returns a LedgerStore backed by a postgres transaction.
// Locks are row locks (SELECT ... FOR UPDATE); a positive lockTimeout bounds
// how long one statement waits for them.
func NewLedgerStore(db *gorm.DB, lockTimeout time.Duration) LedgerStore {
	return &gormLedgerStore{db: db, lockTimeout: lockTimeout}
}

func (s *gormLedgerStore) WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("set lock timeout: %w", err)
			}
		}
		if err := fn(&gormLedgerTx{db: tx, locked: map[uint]*models.Account{}}); err != nil {
			return err
		}
		// A cancelled request must not commit.
		return ctx.Err()
	})
	return translatePgError(err)
}

type gormLedgerTx struct {
	db     *gorm.DB
	locked map[uint]*models.Account
}

func (t *gormLedgerTx) LockAccounts(ids ...uint) (map[uint]*models.Account, error) {
	out := make(map[uint]*models.Account, len(ids))
	for _, id := range UniqueIDs(ids) {
		if acc, ok := t.locked[id]; ok {
			out[id] = acc
			continue
		}
		var acc models.Account
		err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&acc, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("lock account %d: %w", id, ErrAccountNotFound)
			}
			return nil, fmt.Errorf("lock account %d: %w", id, err)
		}
		t.locked[id] = &acc
		out[id] = &acc
	}
	return out, nil
}

func (t *gormLedgerTx) UpdateBalance(accountID uint, balance money.Money) error {
	acc, ok := t.locked[accountID]
	if !ok {
		return fmt.Errorf("update balance of account %d: %w", accountID, ErrAccountNotLocked)
	}
	next := *acc
	next.Balance = balance
	if err := next.Validate(); err != nil {
		return err
	}

	res := t.db.Model(&models.Account{}).
		Where("id = ?", accountID).
		UpdateColumns(map[string]interface{}{
			"balance":    balance,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("update balance of account %d: %w", accountID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update balance of account %d: %w", accountID, ErrAccountNotFound)
	}
	acc.Balance = balance
	return nil
}

func (t *gormLedgerTx) CreateEntry(entry *models.LedgerEntry) error {
	if _, ok := t.locked[entry.AccountID]; !ok {
		return fmt.Errorf("create entry for account %d: %w", entry.AccountID, ErrAccountNotLocked)
	}
	if err := t.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create entry for account %d: %w", entry.AccountID, err)
	}
	return nil
}
