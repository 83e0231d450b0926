package cash

import (
	"context"

	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

// Repository defines persistence for employees, shifts and cash transactions.
type Repository interface {
	CreateEmployee(ctx context.Context, e *Employee) error
	GetEmployee(ctx context.Context, id id.ID) (*Employee, error)

	// GetEmployeeForUpdate locks the employee row for a balance change.
	GetEmployeeForUpdate(ctx context.Context, id id.ID) (*Employee, error)
	UpdateEmployeeBalance(ctx context.Context, id id.ID, balance types.Money) error

	AddBalanceHistory(ctx context.Context, entry *BalanceHistoryEntry) error
	ListBalanceHistory(ctx context.Context, employeeID id.ID) ([]BalanceHistoryEntry, error)

	CreateShift(ctx context.Context, s *Shift) error
	GetShift(ctx context.Context, id id.ID) (*Shift, error)
	GetShiftForUpdate(ctx context.Context, id id.ID) (*Shift, error)
	UpdateShift(ctx context.Context, s *Shift) error

	// FindOpenShift returns any open shift, or nil when none is open.
	FindOpenShift(ctx context.Context) (*Shift, error)

	// FindOpenShiftByEmployee returns the employee's open shift, or nil.
	FindOpenShiftByEmployee(ctx context.Context, employeeID id.ID) (*Shift, error)

	CreateTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, shiftID id.ID) ([]Transaction, error)
}
