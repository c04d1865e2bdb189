package ledger

import (
	"context"
	"time"

	"purse/internal/models"
	"purse/internal/money"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)          {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                         {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                        {}

type noopCache struct{}

func (noopCache) GetBalance(context.Context, uint) (money.Money, bool, error) {
	return money.Zero, false, nil
}
func (noopCache) BalanceVersion(context.Context, uint) (int64, error)        { return 0, nil }
func (noopCache) SetBalance(context.Context, uint, money.Money, int64) error { return nil }
func (noopCache) InvalidateBalance(context.Context, ...uint) error           { return nil }

type noopPublisher struct{}

func (noopPublisher) PublishEntries(context.Context, ...*models.LedgerEntry) error { return nil }
