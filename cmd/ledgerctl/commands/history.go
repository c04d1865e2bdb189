package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"purse/internal/services/ledger"

	"github.com/spf13/cobra"
)

func newHistoryCmd(e *env) *cobra.Command {
	var (
		email  string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List an account's ledger entries, newest first",
		Long: `List an account's ledger entries, newest first.

Examples:
  ledgerctl history --email alice@example.com --limit 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.connect(false); err != nil {
				return err
			}
			accounts, ledgerService := e.services()

			acc, err := accounts.GetByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("%s: %w", email, err)
			}
			res, err := ledgerService.History(cmd.Context(), acc, limit, offset)
			if err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("%s: %s", email, res.Message())
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tKIND\tAMOUNT\tBALANCE\tDESCRIPTION")
			for _, entry := range res.Data.Entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					entry.ID,
					entry.CreatedAt.Format(time.RFC3339),
					entry.Kind,
					entry.Amount,
					entry.BalanceAfter,
					entry.Description,
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d entries\n", len(res.Data.Entries), res.Data.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().IntVar(&limit, "limit", ledger.DefaultPageSize, "Maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of newest entries to skip")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
