package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
// Ledger appends and their blob rows commit together through it.
type TransactionManager interface {
	// ExecTx executes fn within a transaction; fn's error rolls it back
	ExecTx(ctx context.Context, fn TxFn) error
}
