package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBalanceCmd(e *env) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print an account's balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.connect(false); err != nil {
				return err
			}
			accounts, ledgerService := e.services()

			acc, err := accounts.GetByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("%s: %w", email, err)
			}
			res, err := ledgerService.GetBalance(cmd.Context(), acc)
			if err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("%s: %s", email, res.Message())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", acc.Email, res.Data.Balance)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
