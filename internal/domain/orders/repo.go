package orders

import (
	"context"

	"restoledger/internal/core/id"
)

// Repository defines the interface for Order persistence.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id id.ID) (*Order, error)

	// GetForUpdate loads the order with a row lock, including lines and add-ons.
	GetForUpdate(ctx context.Context, id id.ID) (*Order, error)

	// Update persists header fields (status, flags, shift link, cash state).
	Update(ctx context.Context, o *Order) error

	// ListByIDsForUpdate locks the given orders.
	ListByIDsForUpdate(ctx context.Context, ids []id.ID) ([]*Order, error)

	// ListOrphanedCash returns completed cash orders without a shift link.
	ListOrphanedCash(ctx context.Context) ([]*Order, error)

	// ListByShift returns orders linked to the shift (headers only).
	ListByShift(ctx context.Context, shiftID id.ID) ([]*Order, error)
}
