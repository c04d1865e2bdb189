package commands

import (
	"bytes"
	"context"
	"testing"

	"purse/internal/bootstrap"
	"purse/internal/config"
	"purse/internal/models"
	"purse/internal/money"
	"purse/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sharedStore(store *memory.Store) Opener {
	return func(config.Config, bool, *zap.Logger) (*bootstrap.Stores, error) {
		return &bootstrap.Stores{Ledger: store, Accounts: store}, nil
	}
}

func run(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--storage", config.StorageMemory))
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	open := sharedStore(store)

	out, err := run(t, open, "seed", "--email", "Alice@Example.com", "--balance", "1000.50")
	require.NoError(t, err)
	assert.Contains(t, out, "created account 1 (alice@example.com) with balance 1000.50")

	out, err = run(t, open, "seed", "--email", "alice@example.com", "--balance", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	acc, err := store.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1000.50", acc.Balance.String())
}

func TestSeedRejectsNegativeBalance(t *testing.T) {
	_, err := run(t, sharedStore(memory.NewStore()), "seed", "--email", "bob@example.com", "--balance", "-1")
	assert.ErrorContains(t, err, "balance must be greater than or equal to 0")
}

func TestBalanceAndHistory(t *testing.T) {
	store := memory.NewStore()
	open := sharedStore(store)
	_, err := run(t, open, "seed", "--email", "alice@example.com", "--balance", "100")
	require.NoError(t, err)

	acc, err := store.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	_, ledgerService := (&env{stores: &bootstrap.Stores{Ledger: store, Accounts: store}, log: zap.NewNop()}).services()
	res, err := ledgerService.Deposit(context.Background(), acc, money.MustParse("25.50"), "")
	require.NoError(t, err)
	require.True(t, res.Success)

	out, err := run(t, open, "balance", "--email", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com\t125.50\n", out)

	out, err = run(t, open, "history", "--email", "alice@example.com", "--limit", "10")
	require.NoError(t, err)
	assert.Contains(t, out, string(models.EntryKindDeposit))
	assert.Contains(t, out, "Deposit of 25.50")
	assert.Contains(t, out, "1 of 1 entries")

	_, err = run(t, open, "balance", "--email", "nobody@example.com")
	assert.ErrorContains(t, err, "account not found")
}

func TestMigrateMemory(t *testing.T) {
	out, err := run(t, sharedStore(memory.NewStore()), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")
}
