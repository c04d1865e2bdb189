// Package main is the entry point of the wallet API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"purse/internal/bootstrap"
	"purse/internal/config"
	"purse/internal/events/kafka"
	"purse/internal/handlers"
	"purse/internal/logger"
	"purse/internal/repositories/cache"
	"purse/internal/routes"
	"purse/internal/services/account"
	"purse/internal/services/auth"
	"purse/internal/services/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	stores, err := bootstrap.OpenStores(cfg, true, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()

	checks := map[string]handlers.HealthCheckFunc{
		"database": func(context.Context) error { return stores.Ping() },
	}

	accounts := account.NewService(stores.Accounts, log)
	opts := []ledger.Option{}

	if cfg.Redis.Host != "" {
		cacheService := cache.NewCacheService(cache.NewRedisClient(cfg.Redis), cfg.Redis.TTL)
		if err := cacheService.HealthCheck(context.Background()); err != nil {
			log.Warn("redis unavailable, balance reads will miss", zap.Error(err))
		}
		defer func() {
			if err := cacheService.Close(); err != nil {
				log.Warn("close redis", zap.Error(err))
			}
		}()
		opts = append(opts, ledger.WithCache(cacheService))
		checks["redis"] = cacheService.HealthCheck
		log.Info("balance cache enabled", zap.String("redis", cfg.Redis.Host+":"+cfg.Redis.Port))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := kafka.NewPublisher(cfg.Kafka, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warn("close kafka writer", zap.Error(err))
			}
		}()
		opts = append(opts, ledger.WithPublisher(publisher))
		log.Info("entry events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	ledgerService := ledger.NewService(stores.Ledger, stores.Accounts, accounts, log, opts...)
	authService := auth.NewService(stores.Accounts, cfg.JWTSecret, cfg.TokenTTL, log)

	app := fiber.New(fiber.Config{
		AppName:               "purse",
		DisableStartupMessage: cfg.IsProduction(),
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		Accounts:      accounts,
		Auth:          authService,
		Ledger:        ledgerService,
		HealthChecks:  checks,
		Log:           log,
		AuthRateLimit: config.GetIntEnv("AUTH_RATE_LIMIT", 5),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("storage", cfg.Storage))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
