package repositories

import (
	"context"
	"errors"
	"fmt"

	"purse/internal/models"

	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	account.Email = models.NormalizeEmail(account.Email)
	if account.TokenVersion == 0 {
		account.TokenVersion = 1
	}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", translatePgError(err))
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) ListEntries(ctx context.Context, accountID uint, limit, offset int) ([]models.LedgerEntry, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).Where("account_id = ?", accountID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	entries := []models.LedgerEntry{}
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, total, nil
}

func (r *accountRepository) IncrementTokenVersion(ctx context.Context, id uint) (int, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to bump token version: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrAccountNotFound
	}

	var version int
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Select("token_version").
		Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read token version: %w", err)
	}
	return version, nil
}
