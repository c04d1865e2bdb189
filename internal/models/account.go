package models

import (
	"net/mail"
	"strings"
	"time"

	domainerrors "purse/internal/errors"
	"purse/internal/money"

	"gorm.io/gorm"
)

// Account holds a user's balance. The balance only changes through the ledger service.
type Account struct {
	ID           uint        `gorm:"primarykey" json:"id"`
	Email        string      `gorm:"uniqueIndex;not null" json:"email"`
	Balance      money.Money `gorm:"type:numeric(15,2);not null;default:0;check:chk_accounts_balance_non_negative,balance >= 0" json:"balance"`
	TokenVersion int         `gorm:"not null;default:1" json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NormalizeEmail trims and lowercases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the account-level invariants.
func (a *Account) Validate() error {
	verr := &domainerrors.ValidationError{}
	if a.Email == "" {
		verr.Add("email can't be blank")
	} else if _, err := mail.ParseAddress(a.Email); err != nil {
		verr.Add("email is invalid")
	}
	if a.Balance.IsNegative() {
		verr.Add("balance must be greater than or equal to 0")
	}
	if a.Balance.GreaterThan(money.Max) {
		verr.Add("balance out of range")
	}
	return verr.OrNil()
}

// BeforeSave runs the model validations on create and update.
func (a *Account) BeforeSave(tx *gorm.DB) error {
	return a.Validate()
}

// Snapshot returns a detached copy safe to hand to callers.
func (a *Account) Snapshot() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}
