// Package stock provides the stock register: per (warehouse, ingredient)
// balances plus the movement journal.
package stock

import (
	"context"

	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

// Repository defines operations for the stock register.
type Repository interface {
	// GetOrCreateForUpdate returns the balance with an exclusive row lock,
	// inserting a zero balance first when the pair was never referenced.
	GetOrCreateForUpdate(ctx context.Context, warehouseID, ingredientID id.ID) (*entity.StockBalance, error)

	// SaveBalance writes a balance previously obtained by GetOrCreateForUpdate.
	SaveBalance(ctx context.Context, balance *entity.StockBalance) error

	// GetBalance reads a balance without locking; absent rows read as zero.
	GetBalance(ctx context.Context, warehouseID, ingredientID id.ID) (entity.StockBalance, error)

	// SumByIngredient totals the ingredient across all warehouses.
	SumByIngredient(ctx context.Context, ingredientID id.ID) (types.Quantity, error)

	ListByWarehouse(ctx context.Context, warehouseID id.ID, filter BalanceFilter) ([]entity.StockBalance, error)
	ListNegative(ctx context.Context) ([]entity.StockBalance, error)

	// CreateMovements appends journal rows.
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error)
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	IngredientIDs []id.ID
	ExcludeZero   bool
}
