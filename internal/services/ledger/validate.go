package ledger

import (
	"errors"

	domainerrors "purse/internal/errors"
	"purse/internal/money"
)

// MaxAmount is the ceiling for a single deposit, withdrawal or transfer.
var MaxAmount = money.FromCents(100_000_000)

// ValidateAmount parses a raw amount and checks it against the per-operation
// rules: it must be a number, strictly positive after rounding to cents, and
// no larger than MaxAmount. It has no side effects.
func ValidateAmount(raw any) (money.Money, *domainerrors.DomainError) {
	amount, err := money.Parse(raw)
	if errors.Is(err, money.ErrOutOfRange) {
		return money.Zero, domainerrors.ErrAmountTooLarge
	}
	if err != nil || !amount.IsPositive() {
		return money.Zero, domainerrors.ErrInvalidAmount
	}
	if amount.GreaterThan(MaxAmount) {
		return money.Zero, domainerrors.ErrAmountTooLarge
	}
	return amount, nil
}
