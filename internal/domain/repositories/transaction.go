package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles storage transactions
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error
}

// DirectTransactionManager runs fn without a transaction, for backends
// whose single writes are already atomic (memory, files)
type DirectTransactionManager struct{}

// ExecTx calls fn with ctx unchanged
func (DirectTransactionManager) ExecTx(ctx context.Context, fn TxFn) error {
	return fn(ctx)
}
