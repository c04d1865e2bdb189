package errors

var (
	ErrInvalidAmount = &DomainError{
		Code:    KindInvalidAmount,
		Message: "amount must be greater than 0",
	}
	ErrAmountTooLarge = &DomainError{
		Code:    KindInvalidAmount,
		Message: "amount too large",
	}
	ErrInsufficientFunds = &DomainError{
		Code:    KindInsufficientFunds,
		Message: "insufficient funds",
	}
	ErrInsufficientFundsForTransfer = &DomainError{
		Code:    KindInsufficientFunds,
		Message: "insufficient funds for transfer",
	}
	ErrSameAccount = &DomainError{
		Code:    KindSameAccount,
		Message: "cannot transfer to the same account",
	}
	ErrRecipientNotFound = &DomainError{
		Code:    KindRecipientNotFound,
		Message: "recipient not found",
	}
	ErrAccountNotFound = &DomainError{
		Code:    KindAccountNotFound,
		Message: "account not found",
	}
	ErrOperationFailed = &DomainError{
		Code:    KindUnexpected,
		Message: "operation failed",
	}
)
