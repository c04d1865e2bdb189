package repositories

import (
	"fmt"
	stdlog "log"
	"time"

	"purse/internal/config"
	"purse/internal/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const chkEntryArithmetic = "chk_ledger_entries_balance_arithmetic"

// DSN builds the postgres connection string for cfg.
func DSN(cfg config.DBConfig) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// OpenDB connects to PostgreSQL and configures the connection pool.
// gorm's own logger writes through log at warn level and ignores record-not-found.
func OpenDB(cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	return OpenDSN(DSN(cfg), cfg, log)
}

// OpenDSN is OpenDB with an explicit connection string.
func OpenDSN(dsn string, cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	writer := &zapio.Writer{Log: log.Named("gorm"), Level: zap.WarnLevel}
	gormLogger := logger.New(
		stdlog.New(writer, "", 0),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("postgres connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return db, nil
}

// Migrate creates or updates the accounts and ledger_entries tables together
// with their CHECK constraints.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Account{}, &models.LedgerEntry{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if !db.Migrator().HasConstraint(&models.LedgerEntry{}, chkEntryArithmetic) {
		err := db.Exec("ALTER TABLE ledger_entries ADD CONSTRAINT " + chkEntryArithmetic +
			" CHECK (balance_after = balance_before + amount)").Error
		if err != nil {
			return fmt.Errorf("add %s: %w", chkEntryArithmetic, err)
		}
	}
	return nil
}

// CloseDB closes the underlying connection pool.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
