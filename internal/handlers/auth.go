package handlers

import (
	"errors"

	domainerrors "purse/internal/errors"
	"purse/internal/middleware"
	"purse/internal/models"
	"purse/internal/services/account"
	"purse/internal/services/auth"
	"purse/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts *account.Service
	auth     *auth.Service
	log      *zap.Logger
}

func NewAuthHandler(accounts *account.Service, authService *auth.Service, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{accounts: accounts, auth: authService, log: log.Named("auth_handler")}
}

type sessionResponse struct {
	AccessToken string          `json:"access_token"`
	Account     *models.Account `json:"account"`
}

// Register opens an account and signs the holder in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email   string `json:"email"`
		Balance any    `json:"balance"`
	}
	if err := decodeBody(c, &input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	acc, err := h.accounts.Register(c.UserContext(), input.Email, input.Balance)
	if err != nil {
		if verr, ok := domainerrors.AsValidation(err); ok {
			return response.ValidationError(c, verr.Messages)
		}
		h.log.Error("register account", zap.Error(err))
		return response.ServerError(c)
	}

	token, err := h.auth.IssueToken(acc)
	if err != nil {
		h.log.Error("issue token", zap.Uint("account_id", acc.ID), zap.Error(err))
		return response.ServerError(c)
	}
	return response.Created(c, sessionResponse{AccessToken: token, Account: acc})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := decodeBody(c, &input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if input.Email == "" {
		return response.BadRequest(c, "email is required")
	}

	acc, token, err := h.auth.Login(c.UserContext(), input.Email)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Unauthorized(c, "invalid email")
		}
		h.log.Error("login", zap.Error(err))
		return response.ServerError(c)
	}
	return response.Success(c, sessionResponse{AccessToken: token, Account: acc})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	acc, ok := middleware.CurrentAccount(c)
	if !ok {
		return response.Unauthorized(c, "invalid claims")
	}
	if err := h.auth.Logout(c.UserContext(), acc.ID); err != nil {
		h.log.Error("logout", zap.Uint("account_id", acc.ID), zap.Error(err))
		return response.ServerError(c)
	}
	return response.Success(c, fiber.Map{"message": "logged out"})
}
