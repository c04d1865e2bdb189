// Package routes wires handlers and middleware onto the Fiber app.
package routes

import (
	"time"

	"purse/internal/handlers"
	"purse/internal/middleware"
	"purse/internal/models"
	"purse/internal/services/account"
	"purse/internal/services/auth"
	"purse/internal/services/ledger"
	"purse/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

type Dependencies struct {
	Accounts     *account.Service
	Auth         *auth.Service
	Ledger       *ledger.Service
	HealthChecks map[string]handlers.HealthCheckFunc
	Log          *zap.Logger

	// AuthRateLimit caps register and login calls per IP per minute. Zero
	// disables the limiter.
	AuthRateLimit int
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Auth, log)
	walletHandler := handlers.NewWalletHandler(deps.Ledger, log)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)
	authMiddleware := middleware.NewAuthMiddleware(deps.Auth, log)

	app.Use(middleware.RequestLogger(log))
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api")
	api.Post("/register", limited(deps.AuthRateLimit, authHandler.Register)...)
	api.Post("/login", limited(deps.AuthRateLimit, authHandler.Login)...)
	api.Post("/logout", authMiddleware.Handler, authHandler.Logout)

	wallet := api.Group("/wallet", authMiddleware.Handler)
	wallet.Get("/balance", middleware.HasPermission(models.PermissionWalletRead), walletHandler.GetBalance)
	wallet.Post("/deposit", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.Deposit)
	wallet.Post("/withdraw", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.Withdraw)
	wallet.Post("/transfer", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.Transfer)
	wallet.Get("/transactions", middleware.HasPermission(models.PermissionTransactionRead), walletHandler.GetTransactions)
}

// limited prefixes h with its own per-IP limiter when perMinute is positive.
func limited(perMinute int, h fiber.Handler) []fiber.Handler {
	if perMinute <= 0 {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "", "too many requests, please try again later")
		},
	}), h}
}
