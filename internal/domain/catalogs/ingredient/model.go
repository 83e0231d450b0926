// Package ingredient provides the ingredient catalog.
package ingredient

import (
	"context"
	"strings"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/types"
)

// Ingredient is a raw material or a semi-finished good.
//
// CurrentCost is a single global weighted-average unit cost shared by all
// warehouses. It changes only on a priced supply or a production run.
type Ingredient struct {
	entity.BaseEntity

	Name string `db:"name" json:"name"`
	Unit string `db:"unit" json:"unit"`

	CurrentCost types.Money `db:"current_cost" json:"currentCost"`

	IsSemiFinished bool `db:"is_semi_finished" json:"isSemiFinished"`
}

// NewIngredient creates an ingredient with zero cost.
func NewIngredient(name, unit string) *Ingredient {
	return &Ingredient{
		BaseEntity:  entity.NewBaseEntity(),
		Name:        name,
		Unit:        unit,
		CurrentCost: types.Zero(),
	}
}

// Validate implements entity.Validatable interface.
func (i *Ingredient) Validate(_ context.Context) error {
	if strings.TrimSpace(i.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(i.Unit) == "" {
		return apperror.NewValidation("unit is required").WithDetail("field", "unit")
	}
	if i.CurrentCost.IsNegative() {
		return apperror.NewValidation("cost cannot be negative").WithDetail("field", "currentCost")
	}
	return nil
}
