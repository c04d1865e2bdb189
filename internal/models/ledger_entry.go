package models

import (
	"fmt"
	"time"

	domainerrors "purse/internal/errors"
	"purse/internal/money"

	"gorm.io/gorm"
)

// EntryKind is the type of balance change an entry records.
type EntryKind string

const (
	EntryKindDeposit     EntryKind = "deposit"
	EntryKindWithdrawal  EntryKind = "withdrawal"
	EntryKindTransferIn  EntryKind = "transfer_in"
	EntryKindTransferOut EntryKind = "transfer_out"
)

// Credit reports whether entries of this kind carry a positive amount.
func (k EntryKind) Credit() bool {
	return k == EntryKindDeposit || k == EntryKindTransferIn
}

func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindDeposit, EntryKindWithdrawal, EntryKindTransferIn, EntryKindTransferOut:
		return true
	}
	return false
}

// LedgerEntry is the immutable audit record of one committed balance change.
type LedgerEntry struct {
	ID             uint        `gorm:"primarykey" json:"id"`
	AccountID      uint        `gorm:"not null;index:idx_ledger_entries_account_created,priority:1" json:"account_id"`
	Account        *Account    `gorm:"foreignKey:AccountID;constraint:OnDelete:RESTRICT" json:"-"`
	Reference      string      `gorm:"type:uuid;not null;index" json:"reference"`
	Kind           EntryKind   `gorm:"type:varchar(20);not null" json:"kind"`
	Amount         money.Money `gorm:"type:numeric(15,2);not null;check:chk_ledger_entries_amount_non_zero,amount <> 0" json:"amount"`
	Description    string      `gorm:"not null;default:''" json:"description"`
	BalanceBefore  money.Money `gorm:"type:numeric(15,2);not null;check:chk_ledger_entries_before_non_negative,balance_before >= 0" json:"balance_before"`
	BalanceAfter   money.Money `gorm:"type:numeric(15,2);not null;check:chk_ledger_entries_after_non_negative,balance_after >= 0" json:"balance_after"`
	CounterpartyID *uint       `json:"counterparty_id,omitempty"`
	CreatedAt      time.Time   `gorm:"not null;index:idx_ledger_entries_account_created,priority:2,sort:desc" json:"created_at"`
}

// Validate checks the entry invariants: non-zero signed amount matching its kind
// and balance_after = balance_before + amount with both snapshots non-negative.
func (e *LedgerEntry) Validate() error {
	verr := &domainerrors.ValidationError{}
	if e.AccountID == 0 {
		verr.Add("account must exist")
	}
	if !e.Kind.Valid() {
		verr.Add(fmt.Sprintf("kind %q is not included in the list", e.Kind))
	}
	switch {
	case e.Amount.IsZero():
		verr.Add("amount can't be zero")
	case e.Kind.Valid() && e.Kind.Credit() != e.Amount.IsPositive():
		verr.Add(fmt.Sprintf("amount sign does not match kind %s", e.Kind))
	}
	if e.BalanceBefore.IsNegative() {
		verr.Add("balance_before must be greater than or equal to 0")
	}
	if e.BalanceAfter.IsNegative() {
		verr.Add("balance_after must be greater than or equal to 0")
	}
	if e.BalanceAfter.GreaterThan(money.Max) {
		verr.Add("balance_after out of range")
	}
	if !e.BalanceBefore.Add(e.Amount).Equal(e.BalanceAfter) {
		verr.Add("balance_after must equal balance_before plus amount")
	}
	return verr.OrNil()
}

// BeforeCreate validates the entry before insert.
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	return e.Validate()
}

// BeforeUpdate rejects any update; entries are append-only.
func (e *LedgerEntry) BeforeUpdate(tx *gorm.DB) error {
	return fmt.Errorf("ledger entries are immutable")
}

// BeforeDelete rejects any delete; entries are append-only.
func (e *LedgerEntry) BeforeDelete(tx *gorm.DB) error {
	return fmt.Errorf("ledger entries are immutable")
}
