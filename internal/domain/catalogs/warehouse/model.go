// Package warehouse provides the warehouse catalog: storage points and production cells.
package warehouse

import (
	"context"
	"strings"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
)

// Warehouse is a stock location.
//
// A production cell may be linked to one storage warehouse it draws raw
// materials from. The link is resolved at most once, never chained.
type Warehouse struct {
	entity.BaseEntity

	Name string `db:"name" json:"name"`

	IsProduction bool `db:"is_production" json:"isProduction"`

	// LinkedWarehouseID is meaningful only when IsProduction is set.
	LinkedWarehouseID *id.ID `db:"linked_warehouse_id" json:"linkedWarehouseId,omitempty"`
}

// NewWarehouse creates a storage warehouse.
func NewWarehouse(name string) *Warehouse {
	return &Warehouse{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
	}
}

// NewProductionCell creates a production cell drawing from storage (may be nil).
func NewProductionCell(name string, storage *id.ID) *Warehouse {
	w := NewWarehouse(name)
	w.IsProduction = true
	w.LinkedWarehouseID = storage
	return w
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(_ context.Context) error {
	if strings.TrimSpace(w.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if w.LinkedWarehouseID != nil {
		if !w.IsProduction {
			return apperror.NewValidation("only production cells can link to a storage warehouse").
				WithDetail("field", "linkedWarehouseId")
		}
		if *w.LinkedWarehouseID == w.ID {
			return apperror.NewValidation("warehouse cannot link to itself").
				WithDetail("field", "linkedWarehouseId")
		}
	}
	return nil
}

// StorageID returns where stock is physically taken from: the linked
// storage for a production cell, otherwise the warehouse itself.
func (w *Warehouse) StorageID() id.ID {
	if w.IsProduction && w.LinkedWarehouseID != nil {
		return *w.LinkedWarehouseID
	}
	return w.ID
}
