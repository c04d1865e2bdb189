package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainerrors "purse/internal/errors"
	"purse/internal/logger"
	"purse/internal/models"
	"purse/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferByEmail resolves the recipient by email (or numeric id) and moves
// amount from from to it. An unknown recipient fails before the amount is
// looked at.
func (s *Service) TransferByEmail(ctx context.Context, from *models.Account, toEmailOrID string, amount any, description string) (*Result[TransferOutcome], error) {
	log := logger.FromContext(ctx, s.log).With(zap.String("operation", OpTransfer))

	key := strings.TrimSpace(toEmailOrID)
	if key == "" {
		return failResult[TransferOutcome](s, log, OpTransfer, domainerrors.ErrRecipientNotFound), nil
	}
	to, err := s.recipients.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return failResult[TransferOutcome](s, log, OpTransfer, domainerrors.ErrRecipientNotFound), nil
		}
		log.Error("recipient lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", OpTransfer, domainerrors.ErrOperationFailed.Wrap(err))
	}
	return s.Transfer(ctx, from, to, amount, description)
}

// Transfer moves amount from from to an already resolved recipient. Both
// balances and both entries commit together or not at all.
//
// Checks run in order and the first failure wins: recipient present, distinct
// accounts, valid amount, sufficient funds. Funds are checked against the
// caller's snapshot first and again against the locked balance.
func (s *Service) Transfer(ctx context.Context, from, to *models.Account, raw any, description string) (*Result[TransferOutcome], error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(OpTransfer, time.Since(start)) }()
	log := logger.FromContext(ctx, s.log).With(zap.String("operation", OpTransfer))

	if from == nil {
		return failResult[TransferOutcome](s, log, OpTransfer, domainerrors.ErrAccountNotFound), nil
	}
	if to == nil {
		return failResult[TransferOutcome](s, log, OpTransfer, domainerrors.ErrRecipientNotFound), nil
	}
	log = log.With(zap.Uint("from_account_id", from.ID), zap.Uint("to_account_id", to.ID))

	if from.ID == to.ID {
		return failResult[TransferOutcome](s, log, OpTransfer, domainerrors.ErrSameAccount), nil
	}
	amount, derr := ValidateAmount(raw)
	if derr != nil {
		return failResult[TransferOutcome](s, log, OpTransfer, derr), nil
	}
	if from.Balance.LessThan(amount) {
		return failResult[TransferOutcome](s, log, OpTransfer, domainerrors.ErrInsufficientFundsForTransfer), nil
	}

	var outcome TransferOutcome
	err := s.store.WithinTx(ctx, func(tx repositories.LedgerTx) error {
		locked, err := tx.LockAccounts(from.ID, to.ID)
		if err != nil {
			return err
		}
		src, dst := locked[from.ID], locked[to.ID]
		if src.Balance.LessThan(amount) {
			return domainerrors.ErrInsufficientFundsForTransfer
		}

		now := s.clock.Now()
		ref := uuid.NewString()
		srcID, dstID := src.ID, dst.ID

		outgoing := &models.LedgerEntry{
			AccountID:      src.ID,
			Reference:      ref,
			Kind:           models.EntryKindTransferOut,
			Amount:         amount.Neg(),
			Description:    description,
			BalanceBefore:  src.Balance,
			BalanceAfter:   src.Balance.Sub(amount),
			CounterpartyID: &dstID,
			CreatedAt:      now,
		}
		incoming := &models.LedgerEntry{
			AccountID:      dst.ID,
			Reference:      ref,
			Kind:           models.EntryKindTransferIn,
			Amount:         amount,
			Description:    description,
			BalanceBefore:  dst.Balance,
			BalanceAfter:   dst.Balance.Add(amount),
			CounterpartyID: &srcID,
			CreatedAt:      now,
		}
		if description == "" {
			outgoing.Description = fmt.Sprintf("Transfer to %s", dst.Email)
			incoming.Description = fmt.Sprintf("Transfer from %s", src.Email)
		}

		if err := tx.UpdateBalance(src.ID, outgoing.BalanceAfter); err != nil {
			return err
		}
		if err := tx.UpdateBalance(dst.ID, incoming.BalanceAfter); err != nil {
			return err
		}
		if err := tx.CreateEntry(outgoing); err != nil {
			return err
		}
		if err := tx.CreateEntry(incoming); err != nil {
			return err
		}

		outcome = TransferOutcome{
			From:     src.Snapshot(),
			To:       dst.Snapshot(),
			Outgoing: outgoing,
			Incoming: incoming,
		}
		return nil
	})
	if err != nil {
		return handleTxError[TransferOutcome](s, log, OpTransfer, err)
	}

	s.afterCommit(ctx, log, []uint{from.ID, to.ID}, outcome.Outgoing, outcome.Incoming)
	s.metrics.RecordOperationResult(OpTransfer, "success")
	log.Info("transfer committed",
		zap.String("amount", amount.String()),
		zap.String("reference", outcome.Outgoing.Reference),
		zap.String("from_balance_after", outcome.Outgoing.BalanceAfter.String()),
		zap.String("to_balance_after", outcome.Incoming.BalanceAfter.String()),
	)
	return Succeed(&outcome), nil
}
