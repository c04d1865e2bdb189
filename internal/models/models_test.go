package models

import (
	"testing"

	domainerrors "purse/internal/errors"
	"purse/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestAccountValidate(t *testing.T) {
	ok := &Account{Email: "a@example.com", Balance: money.MustParse("0")}
	assert.NoError(t, ok.Validate())

	bad := &Account{Email: "not-an-email", Balance: money.MustParse("-0.01")}
	verr, isValidation := domainerrors.AsValidation(bad.Validate())
	require.True(t, isValidation)
	assert.ElementsMatch(t, []string{
		"email is invalid",
		"balance must be greater than or equal to 0",
	}, verr.Messages)

	full := &Account{Email: "a@example.com", Balance: money.Max}
	assert.NoError(t, full.Validate())

	over := &Account{Email: "a@example.com", Balance: money.Max.Add(money.FromCents(1))}
	verr, isValidation = domainerrors.AsValidation(over.Validate())
	require.True(t, isValidation)
	assert.Equal(t, []string{"balance out of range"}, verr.Messages)
}

func TestLedgerEntryValidate(t *testing.T) {
	valid := &LedgerEntry{
		AccountID:     1,
		Kind:          EntryKindDeposit,
		Amount:        money.MustParse("250.75"),
		BalanceBefore: money.MustParse("1000.50"),
		BalanceAfter:  money.MustParse("1251.25"),
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		entry LedgerEntry
		msg   string
	}{
		{
			name:  "zero amount",
			entry: LedgerEntry{AccountID: 1, Kind: EntryKindDeposit, Amount: money.Zero},
			msg:   "amount can't be zero",
		},
		{
			name: "sign mismatch",
			entry: LedgerEntry{AccountID: 1, Kind: EntryKindWithdrawal, Amount: money.MustParse("5"),
				BalanceBefore: money.MustParse("5"), BalanceAfter: money.MustParse("10")},
			msg: "amount sign does not match kind withdrawal",
		},
		{
			name: "arithmetic",
			entry: LedgerEntry{AccountID: 1, Kind: EntryKindTransferIn, Amount: money.MustParse("5"),
				BalanceBefore: money.MustParse("5"), BalanceAfter: money.MustParse("11")},
			msg: "balance_after must equal balance_before plus amount",
		},
		{
			name: "negative after",
			entry: LedgerEntry{AccountID: 1, Kind: EntryKindTransferOut, Amount: money.MustParse("-6"),
				BalanceBefore: money.MustParse("5"), BalanceAfter: money.MustParse("-1")},
			msg: "balance_after must be greater than or equal to 0",
		},
		{
			name: "after above column range",
			entry: LedgerEntry{AccountID: 1, Kind: EntryKindDeposit, Amount: money.MustParse("1"),
				BalanceBefore: money.Max, BalanceAfter: money.Max.Add(money.MustParse("1"))},
			msg: "balance_after out of range",
		},
		{
			name:  "unknown kind",
			entry: LedgerEntry{AccountID: 1, Kind: "fee", Amount: money.MustParse("1"), BalanceAfter: money.MustParse("1")},
			msg:   `kind "fee" is not included in the list`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr, ok := domainerrors.AsValidation(tt.entry.Validate())
			require.True(t, ok)
			assert.Contains(t, verr.Messages, tt.msg)
		})
	}
}
