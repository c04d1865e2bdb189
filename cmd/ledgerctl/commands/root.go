package commands

import (
	"fmt"
	"os"

	"purse/internal/bootstrap"
	"purse/internal/config"
	"purse/internal/logger"
	"purse/internal/services/account"
	"purse/internal/services/ledger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Opener opens the storage backend for one command run.
type Opener func(cfg config.Config, migrate bool, log *zap.Logger) (*bootstrap.Stores, error)

// env is the state shared by subcommands, filled in by the root's
// PersistentPreRunE.
type env struct {
	open    Opener
	storage string
	verbose bool

	cfg    config.Config
	log    *zap.Logger
	stores *bootstrap.Stores
}

func (e *env) connect(migrate bool) error {
	stores, err := e.open(e.cfg, migrate, e.log)
	if err != nil {
		return err
	}
	e.stores = stores
	return nil
}

func (e *env) services() (*account.Service, *ledger.Service) {
	accounts := account.NewService(e.stores.Accounts, e.log)
	return accounts, ledger.NewService(e.stores.Ledger, e.stores.Accounts, accounts, e.log)
}

func (e *env) close() {
	if e.stores == nil {
		return
	}
	if err := e.stores.Close(); err != nil {
		e.log.Warn("close storage", zap.Error(err))
	}
}

// NewRootCmd builds the ledgerctl command tree over the given opener.
func NewRootCmd(open Opener) *cobra.Command {
	e := &env{open: open}

	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Administer the wallet ledger",
		Long: `ledgerctl runs schema migrations and inspects or seeds accounts.

Connection settings come from the same environment variables (and .env file)
as the API server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			e.cfg = config.Load()
			if e.storage != "" {
				e.cfg.Storage = e.storage
			}
			level := "warn"
			if e.verbose {
				level = "debug"
			}
			log, err := logger.New(level, false)
			if err != nil {
				return err
			}
			e.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&e.storage, "storage", "", "Storage backend (postgres or memory), overrides STORAGE")
	rootCmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		newMigrateCmd(e),
		newSeedCmd(e),
		newBalanceCmd(e),
		newHistoryCmd(e),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd(bootstrap.OpenStores).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
