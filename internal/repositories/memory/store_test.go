package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainerrors "purse/internal/errors"
	"purse/internal/models"
	"purse/internal/money"
	"purse/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, email, balance string) *models.Account {
	t.Helper()
	acc := &models.Account{Email: email, Balance: money.MustParse(balance)}
	require.NoError(t, s.Create(context.Background(), acc))
	return acc
}

func TestCreateNormalizesAndRejectsDuplicates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	acc := seed(t, s, "  Alice@Example.com ", "10")
	assert.Equal(t, "alice@example.com", acc.Email)
	assert.Equal(t, 1, acc.TokenVersion)

	err := s.Create(ctx, &models.Account{Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, repositories.ErrEmailTaken)

	err = s.Create(ctx, &models.Account{Email: "bob@example.com", Balance: money.MustParse("-1")})
	_, isValidation := domainerrors.AsValidation(err)
	assert.True(t, isValidation)

	got, err := s.GetByEmail(ctx, "alice@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	_, err = s.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)
}

func TestWithinTxCommitsAllWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	acc := seed(t, s, "a@example.com", "100.00")

	entry := &models.LedgerEntry{
		AccountID:     acc.ID,
		Reference:     "ref-1",
		Kind:          models.EntryKindDeposit,
		Amount:        money.MustParse("5"),
		BalanceBefore: money.MustParse("100"),
		BalanceAfter:  money.MustParse("105"),
	}
	err := s.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		locked, err := tx.LockAccounts(acc.ID)
		if err != nil {
			return err
		}
		if err := tx.UpdateBalance(acc.ID, locked[acc.ID].Balance.Add(entry.Amount)); err != nil {
			return err
		}
		return tx.CreateEntry(entry)
	})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)

	got, err := s.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "105.00", got.Balance.String())

	entries, total, err := s.ListEntries(ctx, acc.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	acc := seed(t, s, "a@example.com", "100.00")
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		if _, err := tx.LockAccounts(acc.ID); err != nil {
			return err
		}
		if err := tx.UpdateBalance(acc.ID, money.MustParse("1")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Balance.String())

	// The lock was released.
	require.NoError(t, s.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		_, err := tx.LockAccounts(acc.ID)
		return err
	}))
}

func TestWithinTxRejectsUnlockedAndNegativeWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	acc := seed(t, s, "a@example.com", "1.00")

	err := s.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		return tx.UpdateBalance(acc.ID, money.MustParse("2"))
	})
	assert.ErrorIs(t, err, repositories.ErrAccountNotLocked)

	err = s.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		if _, err := tx.LockAccounts(acc.ID); err != nil {
			return err
		}
		return tx.UpdateBalance(acc.ID, money.MustParse("-0.01"))
	})
	_, isValidation := domainerrors.AsValidation(err)
	assert.True(t, isValidation)

	err = s.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		_, err := tx.LockAccounts(acc.ID, 42)
		return err
	})
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)
}

func TestCancelledContextDoesNotCommit(t *testing.T) {
	s := NewStore()
	acc := seed(t, s, "a@example.com", "10.00")
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		if _, err := tx.LockAccounts(acc.ID); err != nil {
			return err
		}
		if err := tx.UpdateBalance(acc.ID, money.MustParse("0")); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	got, err := s.GetByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Balance.String())
}

func TestLockWaitHonoursContext(t *testing.T) {
	s := NewStore()
	acc := seed(t, s, "a@example.com", "10.00")

	holding := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.WithinTx(context.Background(), func(tx repositories.LedgerTx) error {
			if _, err := tx.LockAccounts(acc.ID); err != nil {
				return err
			}
			close(holding)
			<-done
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		_, err := tx.LockAccounts(acc.ID)
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(done)
}

func TestOpposingLockOrdersDoNotDeadlock(t *testing.T) {
	s := NewStore()
	a := seed(t, s, "a@example.com", "10.00")
	b := seed(t, s, "b@example.com", "10.00")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(context.Background(), func(tx repositories.LedgerTx) error {
				_, err := tx.LockAccounts(a.ID, b.ID)
				return err
			})
		}()
		go func() {
			defer wg.Done()
			_ = s.WithinTx(context.Background(), func(tx repositories.LedgerTx) error {
				_, err := tx.LockAccounts(b.ID, a.ID)
				return err
			})
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("transactions deadlocked")
	}
}

func TestListEntriesNewestFirstWithPaging(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	acc := seed(t, s, "a@example.com", "0")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	balance := money.Zero
	for i := 0; i < 3; i++ {
		amount := money.MustParse("1")
		entry := &models.LedgerEntry{
			AccountID:     acc.ID,
			Reference:     "ref",
			Kind:          models.EntryKindDeposit,
			Amount:        amount,
			BalanceBefore: balance,
			BalanceAfter:  balance.Add(amount),
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.WithinTx(ctx, func(tx repositories.LedgerTx) error {
			if _, err := tx.LockAccounts(acc.ID); err != nil {
				return err
			}
			if err := tx.UpdateBalance(acc.ID, entry.BalanceAfter); err != nil {
				return err
			}
			return tx.CreateEntry(entry)
		}))
		balance = entry.BalanceAfter
	}

	page, total, err := s.ListEntries(ctx, acc.ID, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "3.00", page[0].BalanceAfter.String())
	assert.Equal(t, "2.00", page[1].BalanceAfter.String())

	page, _, err = s.ListEntries(ctx, acc.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "1.00", page[0].BalanceAfter.String())

	page, _, err = s.ListEntries(ctx, acc.ID, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestIncrementTokenVersion(t *testing.T) {
	s := NewStore()
	acc := seed(t, s, "a@example.com", "0")

	v, err := s.IncrementTokenVersion(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = s.IncrementTokenVersion(context.Background(), 77)
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)
}
