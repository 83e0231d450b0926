// Package catalog_repo provides PostgreSQL implementations for the catalog
// repositories: warehouses, ingredients and recipes.
package catalog_repo

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"restoledger/internal/core/id"
	"restoledger/internal/domain/catalogs/warehouse"
	"restoledger/internal/infrastructure/storage/postgres"
)

const warehouseTable = "warehouses"

var warehouseColumns = postgres.ExtractDBColumns[warehouse.Warehouse]()

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	postgres.Repo
}

var _ warehouse.Repository = (*WarehouseRepo)(nil)

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txm *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{Repo: postgres.NewRepo(txm)}
}

func (r *WarehouseRepo) baseSelect() sq.SelectBuilder {
	return postgres.Builder().Select(warehouseColumns...).From(warehouseTable)
}

func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	return r.Insert(ctx, warehouseTable, warehouseColumns, w)
}

func (r *WarehouseRepo) GetByID(ctx context.Context, wid id.ID) (*warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	if err := r.Get(ctx, &w, r.baseSelect().Where(sq.Eq{"id": wid}), "warehouse", wid); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WarehouseRepo) List(ctx context.Context) ([]*warehouse.Warehouse, error) {
	var out []*warehouse.Warehouse
	if err := r.Select(ctx, &out, r.baseSelect().OrderBy("id")); err != nil {
		return nil, err
	}
	return out, nil
}

// First returns the oldest warehouse. IDs are UUIDv7, so id order is creation order.
func (r *WarehouseRepo) First(ctx context.Context) (*warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	if err := r.Get(ctx, &w, r.baseSelect().OrderBy("id").Limit(1), "warehouse", "first"); err != nil {
		return nil, err
	}
	return &w, nil
}
