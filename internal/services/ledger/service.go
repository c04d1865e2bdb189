package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainerrors "purse/internal/errors"
	"purse/internal/logger"
	"purse/internal/models"
	"purse/internal/money"
	"purse/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operation names used in logs and metrics.
const (
	OpDeposit    = "deposit"
	OpWithdraw   = "withdraw"
	OpTransfer   = "transfer"
	OpGetBalance = "get_balance"
	OpHistory    = "history"
)

// Service applies balance mutations. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	store      repositories.LedgerStore
	accounts   repositories.AccountRepository
	recipients RecipientLookup
	log        *zap.Logger

	clock     Clock
	cache     BalanceCache
	publisher EntryPublisher
	metrics   MetricsCollector

	afterCommitTimeout time.Duration
}

// DefaultAfterCommitTimeout bounds the cache invalidation and event publish
// that follow a commit.
const DefaultAfterCommitTimeout = 2 * time.Second

// Option configures optional collaborators of a Service.
type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

func WithCache(c BalanceCache) Option { return func(s *Service) { s.cache = c } }

func WithPublisher(p EntryPublisher) Option { return func(s *Service) { s.publisher = p } }

func WithMetrics(m MetricsCollector) Option { return func(s *Service) { s.metrics = m } }

func WithAfterCommitTimeout(d time.Duration) Option {
	return func(s *Service) { s.afterCommitTimeout = d }
}

// NewService creates a ledger service. store, accounts and recipients are required.
func NewService(
	store repositories.LedgerStore,
	accounts repositories.AccountRepository,
	recipients RecipientLookup,
	log *zap.Logger,
	opts ...Option,
) *Service {
	if store == nil {
		panic("ledger store is required")
	}
	if accounts == nil {
		panic("account repository is required")
	}
	if recipients == nil {
		panic("recipient lookup is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		store:      store,
		accounts:   accounts,
		recipients: recipients,
		log:        log.Named("ledger"),
		clock:      SystemClock{},
		cache:      noopCache{},
		publisher:  noopPublisher{},
		metrics:    &NoopMetricsCollector{},

		afterCommitTimeout: DefaultAfterCommitTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateAmount applies the shared amount rules. See the package-level ValidateAmount.
func (s *Service) ValidateAmount(raw any) (money.Money, *domainerrors.DomainError) {
	return ValidateAmount(raw)
}

// Deposit credits amount to account.
func (s *Service) Deposit(ctx context.Context, account *models.Account, amount any, description string) (*Result[BalanceChange], error) {
	return s.applyChange(ctx, OpDeposit, account, amount, description)
}

// Withdraw debits amount from account. The balance may reach zero but never go below it.
func (s *Service) Withdraw(ctx context.Context, account *models.Account, amount any, description string) (*Result[BalanceChange], error) {
	return s.applyChange(ctx, OpWithdraw, account, amount, description)
}

func (s *Service) applyChange(ctx context.Context, op string, account *models.Account, raw any, description string) (*Result[BalanceChange], error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(op, time.Since(start)) }()
	log := logger.FromContext(ctx, s.log).With(zap.String("operation", op))

	if account == nil {
		return failResult[BalanceChange](s, log, op, domainerrors.ErrAccountNotFound), nil
	}
	log = log.With(zap.Uint("account_id", account.ID))

	amount, derr := ValidateAmount(raw)
	if derr != nil {
		return failResult[BalanceChange](s, log, op, derr), nil
	}

	var change BalanceChange
	err := s.store.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		locked, err := tx.LockAccounts(account.ID)
		if err != nil {
			return err
		}
		acc := locked[account.ID]

		before := acc.Balance
		entry := &models.LedgerEntry{
			AccountID:     acc.ID,
			Reference:     uuid.NewString(),
			Description:   description,
			BalanceBefore: before,
			CreatedAt:     s.clock.Now(),
		}
		switch op {
		case OpDeposit:
			entry.Kind = models.EntryKindDeposit
			entry.Amount = amount
			if entry.Description == "" {
				entry.Description = fmt.Sprintf("Deposit of %s", amount)
			}
		default:
			entry.Kind = models.EntryKindWithdrawal
			entry.Amount = amount.Neg()
			if entry.Description == "" {
				entry.Description = fmt.Sprintf("Withdrawal of %s", amount)
			}
		}
		entry.BalanceAfter = before.Add(entry.Amount)
		if entry.BalanceAfter.IsNegative() {
			return domainerrors.ErrInsufficientFunds
		}

		if err := tx.UpdateBalance(acc.ID, entry.BalanceAfter); err != nil {
			return err
		}
		if err := tx.CreateEntry(entry); err != nil {
			return err
		}

		change = BalanceChange{Account: acc.Snapshot(), Entry: entry}
		return nil
	})
	if err != nil {
		return handleTxError[BalanceChange](s, log, op, err)
	}

	s.afterCommit(ctx, log, []uint{account.ID}, change.Entry)
	s.metrics.RecordOperationResult(op, "success")
	log.Info("balance updated",
		zap.String("amount", amount.String()),
		zap.String("balance_before", change.Entry.BalanceBefore.String()),
		zap.String("balance_after", change.Entry.BalanceAfter.String()),
		zap.String("reference", change.Entry.Reference),
	)
	return Succeed(&change), nil
}

// GetBalance returns the account's current balance without locking. The value
// may come from the cache and is only suitable for display.
func (s *Service) GetBalance(ctx context.Context, account *models.Account) (*Result[BalanceView], error) {
	log := logger.FromContext(ctx, s.log).With(zap.String("operation", OpGetBalance))
	if account == nil {
		return failResult[BalanceView](s, log, OpGetBalance, domainerrors.ErrAccountNotFound), nil
	}

	balance, found, err := s.cache.GetBalance(ctx, account.ID)
	if err != nil {
		log.Warn("balance cache read failed", zap.Uint("account_id", account.ID), zap.Error(err))
	}
	if found {
		s.metrics.RecordCacheHit(OpGetBalance)
		return Succeed(&BalanceView{AccountID: account.ID, Balance: balance, Cached: true}), nil
	}
	s.metrics.RecordCacheMiss(OpGetBalance)

	version, err := s.cache.BalanceVersion(ctx, account.ID)
	if err != nil {
		log.Warn("balance cache version read failed", zap.Uint("account_id", account.ID), zap.Error(err))
	}
	current, err := s.accounts.GetByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return failResult[BalanceView](s, log, OpGetBalance, domainerrors.ErrAccountNotFound), nil
		}
		return nil, fmt.Errorf("%s: %w", OpGetBalance, domainerrors.ErrOperationFailed.Wrap(err))
	}

	if err := s.cache.SetBalance(ctx, current.ID, current.Balance, version); err != nil {
		log.Warn("balance cache write failed", zap.Uint("account_id", current.ID), zap.Error(err))
	}
	return Succeed(&BalanceView{AccountID: current.ID, Balance: current.Balance}), nil
}

// History lists the account's entries, newest first.
func (s *Service) History(ctx context.Context, account *models.Account, limit, offset int) (*Result[EntryPage], error) {
	log := logger.FromContext(ctx, s.log).With(zap.String("operation", OpHistory))
	if account == nil {
		return failResult[EntryPage](s, log, OpHistory, domainerrors.ErrAccountNotFound), nil
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	entries, total, err := s.accounts.ListEntries(ctx, account.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpHistory, domainerrors.ErrOperationFailed.Wrap(err))
	}
	return Succeed(&EntryPage{Entries: entries, Total: total, Limit: limit, Offset: offset}), nil
}

// Paging bounds for History.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// afterCommit runs once the balance change is durable. It outlives a cancelled
// request but never holds the response longer than afterCommitTimeout.
func (s *Service) afterCommit(ctx context.Context, log *zap.Logger, accountIDs []uint, entries ...*models.LedgerEntry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.afterCommitTimeout)
	defer cancel()

	if err := s.cache.InvalidateBalance(ctx, accountIDs...); err != nil {
		log.Warn("balance cache invalidation failed", zap.Uints("account_ids", accountIDs), zap.Error(err))
	}
	if err := s.publisher.PublishEntries(ctx, entries...); err != nil {
		log.Warn("entry publish failed", zap.Int("entries", len(entries)), zap.Error(err))
	}
}

func failResult[T any](s *Service, log *zap.Logger, op string, derr *domainerrors.DomainError) *Result[T] {
	s.metrics.RecordOperationResult(op, string(derr.Code))
	log.Debug("operation rejected", zap.String("kind", string(derr.Code)), zap.String("reason", derr.Message))
	return FailWith[T](derr)
}

// handleTxError sorts a failed atomic unit into an expected failure result or
// an operation error. Nothing was committed in either case.
func handleTxError[T any](s *Service, log *zap.Logger, op string, err error) (*Result[T], error) {
	if derr, ok := domainerrors.AsDomain(err); ok && derr.Code.Expected() {
		return failResult[T](s, log, op, derr), nil
	}
	if errors.Is(err, repositories.ErrAccountNotFound) {
		return failResult[T](s, log, op, domainerrors.ErrAccountNotFound), nil
	}
	if verr, ok := domainerrors.AsValidation(err); ok {
		s.metrics.RecordOperationResult(op, string(domainerrors.KindValidationFailed))
		log.Warn("write rejected by validation", zap.Strings("errors", verr.Messages))
		return Fail[T](domainerrors.KindValidationFailed, verr.Messages...), nil
	}

	s.metrics.RecordOperationResult(op, string(domainerrors.KindUnexpected))
	log.Error("operation failed", zap.Error(err))
	return nil, fmt.Errorf("%s: %w", op, domainerrors.ErrOperationFailed.Wrap(err))
}
