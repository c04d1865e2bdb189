// Package auth issues and verifies the bearer tokens of the passwordless API.
// Logging out bumps the account's token version, which invalidates every
// token issued before it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"purse/internal/models"
	"purse/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const issuer = "purse-api"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("session expired")
)

type Service struct {
	accounts repositories.AccountRepository
	secret   []byte
	ttl      time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewService(accounts repositories.AccountRepository, secret string, ttl time.Duration, log *zap.Logger) *Service {
	if accounts == nil {
		panic("account repository is required")
	}
	if secret == "" {
		panic("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		accounts: accounts,
		secret:   []byte(secret),
		ttl:      ttl,
		log:      log.Named("auth"),
		now:      time.Now,
	}
}

// IssueToken signs an access token for account at its current token version.
func (s *Service) IssueToken(account *models.Account) (string, error) {
	now := s.now()
	claims := models.AccountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(account.ID), 10),
		},
		AccountID:    account.ID,
		Email:        account.Email,
		Permissions:  models.DefaultPermissions(),
		TokenVersion: account.TokenVersion,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Login issues a token for the account registered under email.
func (s *Service) Login(ctx context.Context, email string) (*models.Account, string, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			s.log.Debug("login for unknown email")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	token, err := s.IssueToken(account)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// ParseToken verifies the signature, issuer and expiry of tokenString.
func (s *Service) ParseToken(tokenString string) (*models.AccountClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccountClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*models.AccountClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves a bearer token to its account. Tokens issued before
// the account's last logout fail with ErrSessionExpired.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*models.Account, *models.AccountClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	if account.TokenVersion != claims.TokenVersion {
		s.log.Debug("token version mismatch",
			zap.Uint("account_id", account.ID),
			zap.Int("token_version", claims.TokenVersion),
			zap.Int("current_version", account.TokenVersion),
		)
		return nil, nil, ErrSessionExpired
	}
	return account, claims, nil
}

// Logout invalidates every token issued to the account so far.
func (s *Service) Logout(ctx context.Context, accountID uint) error {
	version, err := s.accounts.IncrementTokenVersion(ctx, accountID)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info("account logged out", zap.Uint("account_id", accountID), zap.Int("token_version", version))
	return nil
}
