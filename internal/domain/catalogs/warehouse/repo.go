package warehouse

import (
	"context"

	"restoledger/internal/core/id"
)

// Repository defines the interface for Warehouse persistence.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error
	GetByID(ctx context.Context, id id.ID) (*Warehouse, error)
	List(ctx context.Context) ([]*Warehouse, error)

	// First returns any existing warehouse, or a NotFound error when none exist.
	First(ctx context.Context) (*Warehouse, error)
}
