// Package cash implements the cash shift ledger: the register's cash per
// shift and the cash custody (debt) of couriers and waiters.
package cash

import (
	"context"
	"strings"
	"time"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

// Role of a staff member.
type Role string

const (
	RoleCashier Role = "cashier"
	RoleCourier Role = "courier"
	RoleWaiter  Role = "waiter"
	RoleManager Role = "manager"
)

// Employee is a staff member. CashBalance is the cash they collected and
// have not yet handed to the register. It never goes below zero.
type Employee struct {
	entity.BaseEntity

	Name        string      `db:"name" json:"name"`
	Role        Role        `db:"role" json:"role"`
	CashBalance types.Money `db:"cash_balance" json:"cashBalance"`
	IsActive    bool        `db:"is_active" json:"isActive"`
}

// NewEmployee creates an active employee with a zero balance.
func NewEmployee(name string, role Role) *Employee {
	return &Employee{
		BaseEntity:  entity.NewBaseEntity(),
		Name:        name,
		Role:        role,
		CashBalance: types.Zero(),
		IsActive:    true,
	}
}

// Validate implements entity.Validatable interface.
func (e *Employee) Validate(_ context.Context) error {
	if strings.TrimSpace(e.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	switch e.Role {
	case RoleCashier, RoleCourier, RoleWaiter, RoleManager:
	default:
		return apperror.NewValidation("invalid role").WithDetail("field", "role").WithDetail("value", string(e.Role))
	}
	return nil
}

// CollectsCash reports whether the employee takes customer cash outside the register.
func (e *Employee) CollectsCash() bool {
	return e.Role == RoleCourier || e.Role == RoleWaiter
}

// BalanceHistoryEntry is an audit row for a change of an employee's cash balance.
//
// Delta is the requested change, recorded unclamped, while ResultingBalance
// is clamped at zero. Summing deltas therefore does not always give the
// final balance.
type BalanceHistoryEntry struct {
	ID               id.ID       `db:"id" json:"id"`
	EmployeeID       id.ID       `db:"employee_id" json:"employeeId"`
	Delta            types.Money `db:"delta" json:"delta"`
	ResultingBalance types.Money `db:"resulting_balance" json:"resultingBalance"`
	Reason           string      `db:"reason" json:"reason"`
	OrderID          *id.ID      `db:"order_id" json:"orderId,omitempty"`
	CreatedBy        string      `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time   `db:"created_at" json:"createdAt"`
}

// Shift is a period during which the single cash register is open.
type Shift struct {
	entity.BaseEntity

	EmployeeID id.ID      `db:"employee_id" json:"employeeId"`
	OpenedAt   time.Time  `db:"opened_at" json:"openedAt"`
	ClosedAt   *time.Time `db:"closed_at" json:"closedAt,omitempty"`

	OpeningFloat types.Money  `db:"opening_float" json:"openingFloat"`
	ClosingCash  *types.Money `db:"closing_cash" json:"closingCash,omitempty"`

	// Totals below are frozen when the shift closes.
	ExpectedCash types.Money `db:"expected_cash" json:"expectedCash"`
	CashSales    types.Money `db:"cash_sales" json:"cashSales"`
	CardSales    types.Money `db:"card_sales" json:"cardSales"`
	ServiceIn    types.Money `db:"service_in" json:"serviceIn"`
	ServiceOut   types.Money `db:"service_out" json:"serviceOut"`
	Handovers    types.Money `db:"handovers" json:"handovers"`

	IsClosed bool `db:"is_closed" json:"isClosed"`
}

// NewShift creates an open shift.
func NewShift(employeeID id.ID, openingFloat types.Money) *Shift {
	return &Shift{
		BaseEntity:   entity.NewBaseEntity(),
		EmployeeID:   employeeID,
		OpenedAt:     time.Now().UTC(),
		OpeningFloat: openingFloat,
		ExpectedCash: openingFloat,
		CashSales:    types.Zero(),
		CardSales:    types.Zero(),
		ServiceIn:    types.Zero(),
		ServiceOut:   types.Zero(),
		Handovers:    types.Zero(),
	}
}

// EnsureOpen returns ALREADY_CLOSED for closed shifts.
func (s *Shift) EnsureOpen() error {
	if s.IsClosed {
		return apperror.NewAlreadyClosed(s.ID.String())
	}
	return nil
}

// TransactionType of a register cash movement.
type TransactionType string

const (
	TransactionIn       TransactionType = "in"
	TransactionOut      TransactionType = "out"
	TransactionHandover TransactionType = "handover"
)

// Transaction is a register cash movement within a shift.
type Transaction struct {
	ID      id.ID           `db:"id" json:"id"`
	ShiftID id.ID           `db:"shift_id" json:"shiftId"`
	Amount  types.Money     `db:"amount" json:"amount"`
	Type    TransactionType `db:"type" json:"type"`
	Comment string          `db:"comment" json:"comment,omitempty"`

	// EmployeeID is the staff member who handed cash over.
	EmployeeID *id.ID `db:"employee_id" json:"employeeId,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Statistics summarizes a shift.
//
// TheoreticalCash = opening float + turned-in cash orders + service in -
// service out. Handovers are reported separately and are not added: the
// orders they cover are already in CashTurnedIn.
type Statistics struct {
	ShiftID         id.ID        `json:"shiftId"`
	IsClosed        bool         `json:"isClosed"`
	OrdersCount     int          `json:"ordersCount"`
	OpeningFloat    types.Money  `json:"openingFloat"`
	CashSales       types.Money  `json:"cashSales"`
	CardSales       types.Money  `json:"cardSales"`
	TotalSales      types.Money  `json:"totalSales"`
	CashTurnedIn    types.Money  `json:"cashTurnedIn"`
	CashOutstanding types.Money  `json:"cashOutstanding"`
	ServiceIn       types.Money  `json:"serviceIn"`
	ServiceOut      types.Money  `json:"serviceOut"`
	Handovers       types.Money  `json:"handovers"`
	TheoreticalCash types.Money  `json:"theoreticalCash"`
	ActualCash      *types.Money `json:"actualCash,omitempty"`
	Difference      *types.Money `json:"difference,omitempty"`
}
