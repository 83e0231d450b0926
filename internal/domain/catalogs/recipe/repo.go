package recipe

import (
	"context"

	"restoledger/internal/core/id"
)

// Repository defines persistence for products, recipes, modifiers and rules.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id id.ID) (*Product, error)

	// TechCard returns the product's components ordered by line number.
	TechCard(ctx context.Context, productID id.ID) ([]TechCardItem, error)
	SetTechCard(ctx context.Context, productID id.ID, items []TechCardItem) error

	// SemiFinishedRecipe returns the ingredient's children, empty if it has none.
	SemiFinishedRecipe(ctx context.Context, ingredientID id.ID) ([]SemiFinishedItem, error)
	SetSemiFinishedRecipe(ctx context.Context, ingredientID id.ID, items []SemiFinishedItem) error

	CreateModifier(ctx context.Context, m *Modifier) error
	GetModifier(ctx context.Context, id id.ID) (*Modifier, error)

	CreateRule(ctx context.Context, r *AutoDeductionRule) error
	ListActiveRules(ctx context.Context) ([]*AutoDeductionRule, error)
}
