// Package costing maintains each ingredient's global weighted-average cost.
package costing

import (
	"context"
	"fmt"

	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/pkg/logger"
)

// WeightedAverage blends a priced receipt into the running cost.
//
// existing is the ingredient's total stock across all warehouses before the
// receipt; negative stock counts as zero. When existing+qty is not positive
// the old cost is kept and ok is false.
func WeightedAverage(existing types.Quantity, oldCost types.Money, qty types.Quantity, price types.Money) (cost types.Money, ok bool) {
	e := types.ClampNonNegative(existing)
	denom := e.Add(qty)
	if !denom.IsPositive() {
		return oldCost, false
	}
	value := e.Mul(oldCost).Add(qty.Mul(price))
	return types.RoundCost(value.Div(denom)), true
}

// StockTotals reports global ingredient quantities.
type StockTotals interface {
	IngredientTotal(ctx context.Context, ingredientID id.ID) (types.Quantity, error)
}

// Engine applies priced supplies to ingredient costs.
type Engine struct {
	ingredients ingredient.Repository
	stock       StockTotals
}

// NewEngine creates a costing engine.
func NewEngine(ingredients ingredient.Repository, stock StockTotals) *Engine {
	return &Engine{ingredients: ingredients, stock: stock}
}

// ApplySupplyCost recomputes the ingredient's cost for an incoming supply of
// qty at price. It must run inside the caller's transaction and before the
// supplied quantity is added to any balance. Unpriced supplies are ignored.
func (e *Engine) ApplySupplyCost(ctx context.Context, ingredientID id.ID, qty types.Quantity, price types.Money) (types.Money, error) {
	ing, err := e.ingredients.GetForUpdate(ctx, ingredientID)
	if err != nil {
		return types.Zero(), fmt.Errorf("lock ingredient: %w", err)
	}
	if !price.IsPositive() {
		return ing.CurrentCost, nil
	}

	existing, err := e.stock.IngredientTotal(ctx, ingredientID)
	if err != nil {
		return types.Zero(), err
	}

	newCost, ok := WeightedAverage(existing, ing.CurrentCost, qty, price)
	if !ok || newCost.Equal(ing.CurrentCost) {
		return ing.CurrentCost, nil
	}

	if err := e.ingredients.UpdateCost(ctx, ingredientID, newCost); err != nil {
		return types.Zero(), fmt.Errorf("update cost: %w", err)
	}

	logger.Debug(ctx, "ingredient cost updated",
		"ingredient_id", ingredientID,
		"old_cost", ing.CurrentCost.String(),
		"new_cost", newCost.String(),
		"existing_qty", existing.String(),
	)
	return newCost, nil
}
