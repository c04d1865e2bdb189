// Package middleware provides the Fiber middleware of the wallet API.
package middleware

import (
	"context"
	"errors"
	"strings"

	"purse/internal/models"
	"purse/internal/services/auth"
	"purse/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	LocalClaims  = "claims"
	LocalAccount = "account"
)

// Authenticator resolves a bearer token to its account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Account, *models.AccountClaims, error)
}

// AuthMiddleware validates the bearer token and stores the claims and the
// current account in the request locals.
type AuthMiddleware struct {
	authenticator Authenticator
	log           *zap.Logger
}

func NewAuthMiddleware(authenticator Authenticator, log *zap.Logger) *AuthMiddleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthMiddleware{authenticator: authenticator, log: log.Named("auth_middleware")}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	account, claims, err := m.authenticator.Authenticate(c.UserContext(), tokenString)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrSessionExpired):
		return response.Unauthorized(c, "session expired")
	case errors.Is(err, auth.ErrInvalidToken):
		m.log.Debug("token rejected", zap.Error(err))
		return response.Unauthorized(c, "invalid token")
	default:
		m.log.Error("authenticate request", zap.Error(err))
		return response.ServerError(c)
	}

	c.Locals(LocalClaims, claims)
	c.Locals(LocalAccount, account)
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(LocalClaims).(*models.AccountClaims)
		if !ok || claims == nil {
			return response.Unauthorized(c, "unauthorized")
		}
		if !claims.HasPermission(permission) {
			return response.Forbidden(c)
		}
		return c.Next()
	}
}

// CurrentAccount returns the account stored by AuthMiddleware.
func CurrentAccount(c *fiber.Ctx) (*models.Account, bool) {
	account, ok := c.Locals(LocalAccount).(*models.Account)
	return account, ok && account != nil
}
