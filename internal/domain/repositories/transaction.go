package repositories

import "context"

// TxFn runs within a transaction scope.
type TxFn func(ctx context.Context) error

// TransactionManager wraps a unit of work in a database transaction. The
// move cascade and counter adjustments run through this so a crash
// mid-cascade rolls back instead of leaving a subtree half-reparented.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
