package dto

import (
	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest creates a storage warehouse or a production cell.
type CreateWarehouseRequest struct {
	Name              string `json:"name" binding:"required"`
	IsProduction      bool   `json:"isProduction"`
	LinkedWarehouseID string `json:"linkedWarehouseId"`
}

// CreateIngredientRequest creates an ingredient.
type CreateIngredientRequest struct {
	Name           string          `json:"name" binding:"required"`
	Unit           string          `json:"unit" binding:"required"`
	CurrentCost    decimal.Decimal `json:"currentCost"`
	IsSemiFinished bool            `json:"isSemiFinished"`
}

// RecipeItem is a component line of a tech card or semi-finished recipe.
type RecipeItem struct {
	IngredientID string          `json:"ingredientId" binding:"required"`
	GrossQty     decimal.Decimal `json:"grossQty"`
	NetQty       decimal.Decimal `json:"netQty"`
	IsTakeaway   bool            `json:"isTakeaway"`
}

// CreateProductRequest creates a product with its tech card.
type CreateProductRequest struct {
	Name                  string       `json:"name" binding:"required"`
	ProductionWarehouseID string       `json:"productionWarehouseId"`
	Items                 []RecipeItem `json:"items"`
}

// SetRecipeRequest replaces a semi-finished recipe.
type SetRecipeRequest struct {
	Items []RecipeItem `json:"items" binding:"required"`
}

// CreateModifierRequest creates a paid add-on. A modifier without an
// ingredient and a positive quantity does not consume stock.
type CreateModifierRequest struct {
	Name         string           `json:"name" binding:"required"`
	Price        decimal.Decimal  `json:"price"`
	IngredientID string           `json:"ingredientId"`
	Quantity     *decimal.Decimal `json:"quantity"`
	WarehouseID  string           `json:"warehouseId"`
}

// CreateRuleRequest creates an auto-deduction rule.
type CreateRuleRequest struct {
	Name         string          `json:"name" binding:"required"`
	Trigger      string          `json:"trigger" binding:"required"`
	IngredientID string          `json:"ingredientId" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	WarehouseID  string          `json:"warehouseId" binding:"required"`
}
