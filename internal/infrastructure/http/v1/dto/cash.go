package dto

import (
	"github.com/shopspring/decimal"
)

// CreateEmployeeRequest registers a staff member.
type CreateEmployeeRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role" binding:"required"`
}

// OpenShiftRequest opens a cash shift.
type OpenShiftRequest struct {
	EmployeeID   string          `json:"employeeId" binding:"required"`
	OpeningFloat decimal.Decimal `json:"openingFloat"`
}

// CloseShiftRequest closes a shift with the counted cash.
type CloseShiftRequest struct {
	ActualCash decimal.Decimal `json:"actualCash"`
}

// CashTransactionRequest records service cash in or out.
type CashTransactionRequest struct {
	Type    string          `json:"type" binding:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Comment string          `json:"comment"`
}

// HandoverRequest turns an employee's collected cash for the named orders in.
type HandoverRequest struct {
	EmployeeID string   `json:"employeeId" binding:"required"`
	OrderIDs   []string `json:"orderIds" binding:"required,min=1"`
}
