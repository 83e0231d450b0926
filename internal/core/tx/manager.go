// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces; the implementations live in
// infrastructure/storage (postgres and the in-memory store).
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
//
// Every top-level ledger operation runs in exactly one transaction: nested
// calls reuse the transaction already carried by ctx, so a failure anywhere
// rolls back the whole operation.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
