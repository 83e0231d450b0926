package memory

import (
	"context"
	"slices"
	"time"

	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/registers/stock"
)

// StockRepo implements stock.Repository.
type StockRepo struct{ s *Store }

var _ stock.Repository = (*StockRepo)(nil)

func (r *StockRepo) GetOrCreateForUpdate(ctx context.Context, warehouseID, ingredientID id.ID) (*entity.StockBalance, error) {
	defer r.s.write(ctx)()
	key := entity.BalanceKey{WarehouseID: warehouseID, IngredientID: ingredientID}
	b, ok := r.s.st.balances[key]
	if !ok {
		b = entity.StockBalance{
			WarehouseID:  warehouseID,
			IngredientID: ingredientID,
			Quantity:     types.Zero(),
			UpdatedAt:    time.Now().UTC(),
		}
		r.s.st.balances[key] = b
	}
	return &b, nil
}

func (r *StockRepo) SaveBalance(ctx context.Context, balance *entity.StockBalance) error {
	defer r.s.write(ctx)()
	r.s.st.balances[balance.Key()] = *balance
	return nil
}

func (r *StockRepo) GetBalance(ctx context.Context, warehouseID, ingredientID id.ID) (entity.StockBalance, error) {
	defer r.s.read(ctx)()
	key := entity.BalanceKey{WarehouseID: warehouseID, IngredientID: ingredientID}
	if b, ok := r.s.st.balances[key]; ok {
		return b, nil
	}
	return entity.StockBalance{WarehouseID: warehouseID, IngredientID: ingredientID, Quantity: types.Zero()}, nil
}

func (r *StockRepo) SumByIngredient(ctx context.Context, ingredientID id.ID) (types.Quantity, error) {
	defer r.s.read(ctx)()
	total := types.Zero()
	for _, b := range r.s.st.balances {
		if b.IngredientID == ingredientID {
			total = total.Add(b.Quantity)
		}
	}
	return total, nil
}

func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID, filter stock.BalanceFilter) ([]entity.StockBalance, error) {
	defer r.s.read(ctx)()
	var out []entity.StockBalance
	for _, b := range r.s.st.balances {
		if b.WarehouseID != warehouseID {
			continue
		}
		if len(filter.IngredientIDs) > 0 && !slices.Contains(filter.IngredientIDs, b.IngredientID) {
			continue
		}
		if filter.ExcludeZero && b.Quantity.IsZero() {
			continue
		}
		out = append(out, b)
	}
	sortByID(out, func(b entity.StockBalance) id.ID { return b.IngredientID })
	return out, nil
}

func (r *StockRepo) ListNegative(ctx context.Context) ([]entity.StockBalance, error) {
	defer r.s.read(ctx)()
	var out []entity.StockBalance
	for _, b := range r.s.st.balances {
		if b.Quantity.IsNegative() {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b entity.StockBalance) int {
		if c := compareIDs(a.WarehouseID, b.WarehouseID); c != 0 {
			return c
		}
		return compareIDs(a.IngredientID, b.IngredientID)
	})
	return out, nil
}

func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	defer r.s.write(ctx)()
	r.s.st.movements = append(r.s.st.movements, movements...)
	return nil
}

func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	defer r.s.read(ctx)()
	var out []entity.StockMovement
	for _, m := range r.s.st.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}
