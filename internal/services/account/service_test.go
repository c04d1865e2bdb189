package account

import (
	"context"
	"strconv"
	"testing"

	domainerrors "purse/internal/errors"
	"purse/internal/repositories"
	"purse/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	svc := NewService(memory.NewStore(), nil)
	ctx := context.Background()

	acc, err := svc.Register(ctx, "  Alice@Example.com", "1000.50")
	require.NoError(t, err)
	assert.NotZero(t, acc.ID)
	assert.Equal(t, "alice@example.com", acc.Email)
	assert.Equal(t, "1000.50", acc.Balance.String())

	zero, err := svc.Register(ctx, "bob@example.com", nil)
	require.NoError(t, err)
	assert.True(t, zero.Balance.IsZero())
}

func TestRegisterRejects(t *testing.T) {
	svc := NewService(memory.NewStore(), nil)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice@example.com", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		email   string
		balance any
		want    string
	}{
		{"duplicate email", "ALICE@example.com", nil, "email has already been taken"},
		{"negative balance", "carol@example.com", "-1", "balance must be greater than or equal to 0"},
		{"non numeric balance", "carol@example.com", "lots", "balance is not a number"},
		{"huge exponent balance", "carol@example.com", "1e999999999", "balance out of range"},
		{"balance above column range", "carol@example.com", "10000000000000", "balance out of range"},
		{"blank email", "   ", nil, "email can't be blank"},
		{"malformed email", "carol", nil, "email is invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.balance)
			verr, ok := domainerrors.AsValidation(err)
			require.True(t, ok, "got %v", err)
			assert.Contains(t, verr.Messages, tt.want)
		})
	}
}

func TestLookup(t *testing.T) {
	svc := NewService(memory.NewStore(), nil)
	ctx := context.Background()
	acc, err := svc.Register(ctx, "alice@example.com", nil)
	require.NoError(t, err)

	got, err := svc.Lookup(ctx, " ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	got, err = svc.Lookup(ctx, strconv.FormatUint(uint64(acc.ID), 10))
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	_, err = svc.Lookup(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)

	_, err = svc.Lookup(ctx, "")
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)
}
