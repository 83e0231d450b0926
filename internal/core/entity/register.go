// Package entity provides core domain entities.
package entity

import (
	"time"

	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

// RecordType defines movement direction for the stock register.
type RecordType string

const (
	// RecordTypeReceipt increases balance
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balance
	RecordTypeExpense RecordType = "expense"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable journal rows written when a document is processed.
type MovementBase struct {
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (supply, transfer, ...)
	RecorderType string `db:"recorder_type" json:"recorderType"`

	Period     time.Time  `db:"period" json:"period"`
	RecordType RecordType `db:"record_type" json:"recordType"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(recorderID id.ID, recorderType string, period time.Time, recordType RecordType) MovementBase {
	return MovementBase{
		LineID:       id.New(),
		RecorderID:   recorderID,
		RecorderType: recorderType,
		Period:       period,
		RecordType:   recordType,
		CreatedAt:    time.Now().UTC(),
	}
}

// StockMovement is one journal row of the stock register.
type StockMovement struct {
	MovementBase

	WarehouseID  id.ID `db:"warehouse_id" json:"warehouseId"`
	IngredientID id.ID `db:"ingredient_id" json:"ingredientId"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
}

// NewStockMovement creates a new stock movement.
func NewStockMovement(
	recorderID id.ID,
	recorderType string,
	period time.Time,
	recordType RecordType,
	warehouseID, ingredientID id.ID,
	quantity types.Quantity,
	unitPrice types.Money,
) StockMovement {
	return StockMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, period, recordType),
		WarehouseID:  warehouseID,
		IngredientID: ingredientID,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
	}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *StockMovement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// StockBalance is the current quantity of one ingredient in one warehouse.
// Balances are created lazily with zero quantity and may go negative.
type StockBalance struct {
	WarehouseID  id.ID `db:"warehouse_id" json:"warehouseId"`
	IngredientID id.ID `db:"ingredient_id" json:"ingredientId"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// BalanceKey identifies a stock balance row.
type BalanceKey struct {
	WarehouseID  id.ID
	IngredientID id.ID
}

// Key returns the balance key.
func (b *StockBalance) Key() BalanceKey {
	return BalanceKey{WarehouseID: b.WarehouseID, IngredientID: b.IngredientID}
}
