// Package bootstrap opens the storage backend selected by configuration.
package bootstrap

import (
	"fmt"

	"purse/internal/config"
	"purse/internal/repositories"
	"purse/internal/repositories/memory"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stores bundles the two storage interfaces over one backend. DB is nil for
// the memory backend.
type Stores struct {
	Ledger   repositories.LedgerStore
	Accounts repositories.AccountRepository
	DB       *gorm.DB
}

// OpenStores connects to the backend named by cfg.Storage. With migrate set
// the Postgres schema is brought up to date first.
func OpenStores(cfg config.Config, migrate bool, log *zap.Logger) (*Stores, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on exit")
		store := memory.NewStore()
		return &Stores{Ledger: store, Accounts: store}, nil

	case config.StoragePostgres, "":
		db, err := repositories.OpenDB(cfg.DB, log)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := repositories.Migrate(db); err != nil {
				_ = repositories.CloseDB(db)
				return nil, err
			}
			log.Info("database migrated")
		}
		return &Stores{
			Ledger:   repositories.NewLedgerStore(db, cfg.DB.LockTimeout),
			Accounts: repositories.NewAccountRepository(db),
			DB:       db,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// Ping checks the database connection. It is a no-op for the memory backend.
func (s *Stores) Ping() error {
	if s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return repositories.CloseDB(s.DB)
}
