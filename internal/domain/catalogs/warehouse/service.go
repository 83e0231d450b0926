package warehouse

import (
	"context"
	"fmt"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/pkg/logger"
)

// Service provides business logic for the warehouse catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Warehouse service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a warehouse. A link must point at an
// existing storage warehouse, not at another production cell.
func (s *Service) Create(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}
	if w.LinkedWarehouseID != nil {
		linked, err := s.repo.GetByID(ctx, *w.LinkedWarehouseID)
		if err != nil {
			return err
		}
		if linked.IsProduction {
			return apperror.NewValidation("linked warehouse must be a storage warehouse").
				WithDetail("linked_warehouse_id", linked.ID.String())
		}
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return fmt.Errorf("create warehouse: %w", err)
	}
	return nil
}

// GetByID returns a warehouse.
func (s *Service) GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	return s.repo.GetByID(ctx, warehouseID)
}

// List returns all warehouses.
func (s *Service) List(ctx context.Context) ([]*Warehouse, error) {
	return s.repo.List(ctx)
}

// ResolveStorage maps a warehouse to its real storage in a single hop.
func (s *Service) ResolveStorage(ctx context.Context, warehouseID id.ID) (id.ID, error) {
	w, err := s.repo.GetByID(ctx, warehouseID)
	if err != nil {
		return id.ID{}, err
	}
	return w.StorageID(), nil
}

// Fallback returns an arbitrary existing warehouse for products without a
// production warehouse. It returns NO_WAREHOUSES when the catalog is empty.
func (s *Service) Fallback(ctx context.Context, reason string, kv ...any) (*Warehouse, error) {
	w, err := s.repo.First(ctx)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNoWarehouses()
		}
		return nil, err
	}
	logger.Warn(ctx, "falling back to arbitrary warehouse", append([]any{"reason", reason, "warehouse_id", w.ID}, kv...)...)
	return w, nil
}
