package ledger

import (
	"context"
	"time"

	"purse/internal/models"
	"purse/internal/money"
)

// RecipientLookup resolves a transfer recipient from an email or numeric id.
// It returns repositories.ErrAccountNotFound when nothing matches.
type RecipientLookup interface {
	Lookup(ctx context.Context, emailOrID string) (*models.Account, error)
}

// Clock stamps ledger entries.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// BalanceCache is a read-through cache for GetBalance. A miss is filled by
// reading BalanceVersion before the store and passing it to SetBalance, which
// drops the write if InvalidateBalance ran in between.
type BalanceCache interface {
	GetBalance(ctx context.Context, accountID uint) (money.Money, bool, error)
	BalanceVersion(ctx context.Context, accountID uint) (int64, error)
	SetBalance(ctx context.Context, accountID uint, balance money.Money, version int64) error
	InvalidateBalance(ctx context.Context, accountIDs ...uint) error
}

// EntryPublisher announces committed entries to downstream consumers.
type EntryPublisher interface {
	PublishEntries(ctx context.Context, entries ...*models.LedgerEntry) error
}

// MetricsCollector receives per-operation measurements.
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordCacheHit(operation string)
	RecordCacheMiss(operation string)
}
