package commands

import (
	"errors"
	"fmt"

	domainerrors "purse/internal/errors"
	"purse/internal/repositories"

	"github.com/spf13/cobra"
)

func newSeedCmd(e *env) *cobra.Command {
	var (
		email   string
		balance string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an account with an opening balance",
		Long: `Create an account with an opening balance. Does nothing if the email is
already registered.

Examples:
  ledgerctl seed --email alice@example.com --balance 1000.50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.connect(false); err != nil {
				return err
			}
			accounts, _ := e.services()
			out := cmd.OutOrStdout()

			if existing, err := accounts.GetByEmail(cmd.Context(), email); err == nil {
				fmt.Fprintf(out, "account %d (%s) already exists\n", existing.ID, existing.Email)
				return nil
			} else if !errors.Is(err, repositories.ErrAccountNotFound) {
				return err
			}

			acc, err := accounts.Register(cmd.Context(), email, balance)
			if err != nil {
				if verr, ok := domainerrors.AsValidation(err); ok {
					return fmt.Errorf("invalid account: %s", verr.Error())
				}
				return err
			}
			fmt.Fprintf(out, "created account %d (%s) with balance %s\n", acc.ID, acc.Email, acc.Balance)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&balance, "balance", "0", "Opening balance")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
