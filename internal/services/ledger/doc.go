/*
Package ledger is the balance-mutation core: deposits, withdrawals and
transfers, each applied under an exclusive account lock together with the
ledger entry that records it.

Usage:

	svc := ledger.NewService(store, accounts, recipients, log,
	    ledger.WithCache(balanceCache),
	    ledger.WithPublisher(publisher),
	)

	res, err := svc.Deposit(ctx, account, "250.75", "")
	if err != nil {
	    // storage or connectivity failure; nothing was committed
	}
	if !res.Success {
	    // res.Kind and res.Errors describe the business failure
	}

	res, err := svc.TransferByEmail(ctx, from, "bob@example.com", 150, "rent")

Results:

Every operation returns a *Result. Expected outcomes (invalid amount,
insufficient funds, self-transfer, unknown recipient, rejected writes) are
failure results with a nil error. Any other failure is returned as an error
wrapping errors.ErrOperationFailed and the atomic unit is rolled back.

Locking:

All mutations lock their accounts through repositories.LedgerTx in ascending
id order, so deposits, withdrawals and transfers can run concurrently on
overlapping accounts without deadlock. Balance reads take no lock.

After commit the cached balances of the touched accounts are invalidated and
the new entries are published. Failures in either step are logged only.
*/
package ledger
