package dto

import (
	"github.com/shopspring/decimal"
)

// OrderLine is a product line of a new order.
type OrderLine struct {
	ProductID   string          `json:"productId" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ModifierIDs []string        `json:"modifierIds"`
}

// CreateOrderRequest registers an order received from the ordering system.
type CreateOrderRequest struct {
	Number        string      `json:"number"`
	Channel       string      `json:"channel" binding:"required"`
	PaymentMethod string      `json:"paymentMethod" binding:"required"`
	CourierID     string      `json:"courierId"`
	AcceptedByID  string      `json:"acceptedById"`
	Lines         []OrderLine `json:"lines"`
}

// StatusChangeRequest moves an order to a new status.
type StatusChangeRequest struct {
	Status     string `json:"status" binding:"required"`
	SkipReturn bool   `json:"skipReturn"`
	EmployeeID string `json:"employeeId"`
}

// PrimeCostResponse is the computed cost of an order.
type PrimeCostResponse struct {
	OrderID   string          `json:"orderId"`
	PrimeCost decimal.Decimal `json:"primeCost"`
	Plan      any             `json:"plan"`
}
