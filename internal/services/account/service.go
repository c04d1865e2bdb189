// Package account handles passwordless registration and account lookup.
package account

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	domainerrors "purse/internal/errors"
	"purse/internal/models"
	"purse/internal/money"
	"purse/internal/repositories"

	"go.uber.org/zap"
)

type Service struct {
	repo repositories.AccountRepository
	log  *zap.Logger
}

func NewService(repo repositories.AccountRepository, log *zap.Logger) *Service {
	if repo == nil {
		panic("account repository is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log.Named("account")}
}

// Register creates an account with an optional opening balance. A nil or
// empty initialBalance opens at zero; the balance must not be negative.
func (s *Service) Register(ctx context.Context, email string, initialBalance any) (*models.Account, error) {
	balance := money.Zero
	if initialBalance != nil && initialBalance != "" {
		parsed, err := money.Parse(initialBalance)
		if errors.Is(err, money.ErrOutOfRange) {
			return nil, &domainerrors.ValidationError{Messages: []string{"balance out of range"}}
		}
		if err != nil {
			return nil, &domainerrors.ValidationError{Messages: []string{"balance is not a number"}}
		}
		balance = parsed
	}

	account := &models.Account{
		Email:   models.NormalizeEmail(email),
		Balance: balance,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, &domainerrors.ValidationError{Messages: []string{"email has already been taken"}}
		}
		if _, ok := domainerrors.AsValidation(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("register account: %w", err)
	}

	s.log.Info("account registered", zap.Uint("account_id", account.ID), zap.String("balance", balance.String()))
	return account, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.repo.GetByEmail(ctx, models.NormalizeEmail(email))
}

// Lookup resolves a transfer recipient. Keys made only of digits are account
// ids, anything else is an email.
func (s *Service) Lookup(ctx context.Context, emailOrID string) (*models.Account, error) {
	key := strings.TrimSpace(emailOrID)
	if key == "" {
		return nil, repositories.ErrAccountNotFound
	}
	if id, err := strconv.ParseUint(key, 10, 0); err == nil {
		return s.repo.GetByID(ctx, uint(id))
	}
	return s.GetByEmail(ctx, key)
}
