// Package reports builds read-only views over the stock register.
package reports

import (
	"time"

	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

// --- Stock Turnover Report ---

// TurnoverFilter selects the period [From, To) and optionally one warehouse.
type TurnoverFilter struct {
	From        time.Time
	To          time.Time
	WarehouseID *id.ID
}

// TurnoverRow is the movement summary of one ingredient in one warehouse.
type TurnoverRow struct {
	WarehouseID  id.ID          `db:"warehouse_id" json:"warehouseId"`
	IngredientID id.ID          `db:"ingredient_id" json:"ingredientId"`
	Opening      types.Quantity `db:"opening" json:"opening"`
	Receipt      types.Quantity `db:"receipt" json:"receipt"`
	Expense      types.Quantity `db:"expense" json:"expense"`
	Closing      types.Quantity `db:"-" json:"closing"`
}

// TurnoverReport is the stock turnover for a period.
type TurnoverReport struct {
	From  time.Time     `json:"from"`
	To    time.Time     `json:"to"`
	Items []TurnoverRow `json:"items"`

	TotalReceipt types.Quantity `json:"totalReceipt"`
	TotalExpense types.Quantity `json:"totalExpense"`
}

// --- Stock Valuation Report ---

// ValuationItem values one balance at the ingredient's current cost.
type ValuationItem struct {
	IngredientID   id.ID          `json:"ingredientId"`
	IngredientName string         `json:"ingredientName"`
	Unit           string         `json:"unit"`
	Quantity       types.Quantity `json:"quantity"`
	UnitCost       types.Money    `json:"unitCost"`
	Value          types.Money    `json:"value"`
}

// ValuationReport is the value of a warehouse's stock. Negative balances
// contribute negative value.
type ValuationReport struct {
	WarehouseID   id.ID           `json:"warehouseId"`
	WarehouseName string          `json:"warehouseName"`
	AsOf          time.Time       `json:"asOf"`
	Items         []ValuationItem `json:"items"`
	TotalValue    types.Money     `json:"totalValue"`
}
