// Package register_repo provides the PostgreSQL stock register.
package register_repo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/registers/stock"
	"restoledger/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "stock_movements"
	stockBalancesTable  = "stock_balances"
)

var (
	movementColumns = postgres.ExtractDBColumns[entity.StockMovement]()
	balanceColumns  = postgres.ExtractDBColumns[entity.StockBalance]()
)

// StockRepo implements stock.Repository.
type StockRepo struct {
	postgres.Repo
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{Repo: postgres.NewRepo(txm)}
}

func (r *StockRepo) balanceSelect() sq.SelectBuilder {
	return postgres.Builder().Select(balanceColumns...).From(stockBalancesTable)
}

// GetOrCreateForUpdate inserts a zero row when the pair is new, then locks it.
// Concurrent first references meet at the primary key, so both end up on one row.
func (r *StockRepo) GetOrCreateForUpdate(ctx context.Context, warehouseID, ingredientID id.ID) (*entity.StockBalance, error) {
	ins := postgres.Builder().Insert(stockBalancesTable).
		Columns("warehouse_id", "ingredient_id", "quantity", "updated_at").
		Values(warehouseID, ingredientID, types.Zero(), time.Now().UTC()).
		Suffix("ON CONFLICT (warehouse_id, ingredient_id) DO NOTHING")
	if _, err := r.Exec(ctx, ins); err != nil {
		return nil, fmt.Errorf("ensure balance row: %w", err)
	}

	var b entity.StockBalance
	q := r.balanceSelect().
		Where(sq.Eq{"warehouse_id": warehouseID, "ingredient_id": ingredientID}).
		Suffix("FOR UPDATE")
	if err := r.Get(ctx, &b, q, "stock balance", fmt.Sprintf("%s/%s", warehouseID, ingredientID)); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *StockRepo) SaveBalance(ctx context.Context, b *entity.StockBalance) error {
	b.UpdatedAt = time.Now().UTC()
	q := postgres.Builder().Update(stockBalancesTable).
		Set("quantity", b.Quantity).
		Set("updated_at", b.UpdatedAt).
		Where(sq.Eq{"warehouse_id": b.WarehouseID, "ingredient_id": b.IngredientID})
	return r.ExecOne(ctx, q, "stock balance", fmt.Sprintf("%s/%s", b.WarehouseID, b.IngredientID))
}

func (r *StockRepo) GetBalance(ctx context.Context, warehouseID, ingredientID id.ID) (entity.StockBalance, error) {
	var b entity.StockBalance
	q := r.balanceSelect().Where(sq.Eq{"warehouse_id": warehouseID, "ingredient_id": ingredientID})
	err := r.Get(ctx, &b, q, "stock balance", ingredientID)
	switch {
	case err == nil:
		return b, nil
	case apperror.IsNotFound(err):
		return entity.StockBalance{WarehouseID: warehouseID, IngredientID: ingredientID, Quantity: types.Zero()}, nil
	default:
		return b, err
	}
}

func (r *StockRepo) SumByIngredient(ctx context.Context, ingredientID id.ID) (types.Quantity, error) {
	var total types.Quantity
	q := postgres.Builder().Select("COALESCE(SUM(quantity), 0)").
		From(stockBalancesTable).
		Where(sq.Eq{"ingredient_id": ingredientID})
	if err := r.Get(ctx, &total, q, "stock total", ingredientID); err != nil {
		return types.Zero(), err
	}
	return total, nil
}

func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID, filter stock.BalanceFilter) ([]entity.StockBalance, error) {
	q := r.balanceSelect().Where(sq.Eq{"warehouse_id": warehouseID})
	if filter.ExcludeZero {
		q = q.Where(sq.NotEq{"quantity": 0})
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where(sq.Eq{"ingredient_id": filter.IngredientIDs})
	}

	var out []entity.StockBalance
	if err := r.Select(ctx, &out, q.OrderBy("ingredient_id")); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StockRepo) ListNegative(ctx context.Context) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	q := r.balanceSelect().Where(sq.Lt{"quantity": 0}).OrderBy("warehouse_id", "ingredient_id")
	if err := r.Select(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMovements appends journal rows with COPY.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, movementRow(m))
	}
	if err := r.CopyFrom(ctx, stockMovementsTable, movementColumns, rows); err != nil {
		return fmt.Errorf("copy movements: %w", err)
	}
	return nil
}

func movementRow(m entity.StockMovement) []any {
	data := postgres.StructToMap(m)
	row := make([]any, len(movementColumns))
	for i, col := range movementColumns {
		row[i] = data[col]
	}
	return row
}

func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	q := postgres.Builder().Select(movementColumns...).
		From(stockMovementsTable).
		Where(sq.Eq{"recorder_id": recorderID}).
		OrderBy("line_id")
	if err := r.Select(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}
