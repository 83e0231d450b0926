package ingredient

import (
	"context"

	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

// Repository defines the interface for Ingredient persistence.
type Repository interface {
	Create(ctx context.Context, ing *Ingredient) error
	GetByID(ctx context.Context, id id.ID) (*Ingredient, error)
	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*Ingredient, error)
	List(ctx context.Context) ([]*Ingredient, error)

	// GetForUpdate retrieves the ingredient with a row lock, serializing cost updates.
	GetForUpdate(ctx context.Context, id id.ID) (*Ingredient, error)

	UpdateCost(ctx context.Context, id id.ID, cost types.Money) error
}
