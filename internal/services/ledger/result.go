package ledger

import (
	"strings"

	domainerrors "purse/internal/errors"
	"purse/internal/models"
	"purse/internal/money"
)

// Result is the uniform outcome of every ledger operation. A success carries
// Data; a failure carries Kind and at least one displayable message.
type Result[T any] struct {
	Success bool              `json:"success"`
	Data    *T                `json:"data,omitempty"`
	Kind    domainerrors.Kind `json:"error_kind,omitempty"`
	Errors  []string          `json:"errors,omitempty"`
}

// Succeed wraps data in a success result.
func Succeed[T any](data *T) *Result[T] {
	return &Result[T]{Success: true, Data: data}
}

// Fail builds a failure result. Empty messages are dropped; if none remain the
// kind itself is used as the message.
func Fail[T any](kind domainerrors.Kind, messages ...string) *Result[T] {
	msgs := make([]string, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m) != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, strings.ToLower(strings.ReplaceAll(string(kind), "_", " ")))
	}
	return &Result[T]{Kind: kind, Errors: msgs}
}

// FailWith builds a failure result from a domain error.
func FailWith[T any](err *domainerrors.DomainError) *Result[T] {
	return Fail[T](err.Code, err.Message)
}

// Message joins the failure messages for logs and single-line displays.
func (r *Result[T]) Message() string {
	return strings.Join(r.Errors, ", ")
}

// BalanceChange is the payload of a deposit or withdrawal.
type BalanceChange struct {
	Account *models.Account     `json:"account"`
	Entry   *models.LedgerEntry `json:"entry"`
}

// TransferOutcome is the payload of a transfer.
type TransferOutcome struct {
	From     *models.Account     `json:"from"`
	To       *models.Account     `json:"to"`
	Outgoing *models.LedgerEntry `json:"outgoing"`
	Incoming *models.LedgerEntry `json:"incoming"`
}

// BalanceView is the payload of GetBalance. Cached reports whether the value
// came from the balance cache and may be stale.
type BalanceView struct {
	AccountID uint        `json:"account_id"`
	Balance   money.Money `json:"balance"`
	Cached    bool        `json:"cached"`
}

// EntryPage is one page of an account's history, newest first.
type EntryPage struct {
	Entries []models.LedgerEntry `json:"entries"`
	Total   int64                `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}
