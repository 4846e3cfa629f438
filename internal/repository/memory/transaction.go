package memory

import (
	"context"

	"filevault/internal/domain/repositories"
)

// TransactionManager runs fn directly. The in-memory stores apply each
// write atomically on their own, so there is nothing to roll back; the
// ledger cleans up orphaned blobs itself.
type TransactionManager struct{}

// NewTransactionManager creates a pass-through transaction manager
func NewTransactionManager() repositories.TransactionManager {
	return TransactionManager{}
}

// ExecTx executes fn with the caller's context
func (TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
