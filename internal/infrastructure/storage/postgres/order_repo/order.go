// Package order_repo provides the PostgreSQL order repository.
package order_repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"restoledger/internal/core/id"
	"restoledger/internal/domain/orders"
	"restoledger/internal/infrastructure/storage/postgres"
)

const (
	orderTable = "orders"
	lineTable  = "order_lines"
	addOnTable = "order_line_addons"
)

var (
	orderColumns = postgres.ExtractDBColumns[orders.Order]()
	addOnColumns = postgres.ExtractDBColumns[orders.AddOn]()

	// headerColumns are the fields Update may change.
	headerColumns = []string{
		"status", "is_inventory_deducted", "stock_written_off", "shift_id", "cash_turned_in",
		"courier_id", "accepted_by_id", "completed_by_id", "completed_at",
	}
)

type lineRow struct {
	OrderID id.ID `db:"order_id"`
	orders.Line
}

type addOnRow struct {
	LineID id.ID `db:"line_id"`
	orders.AddOn
}

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	postgres.Repo
}

var _ orders.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{Repo: postgres.NewRepo(txm)}
}

func (r *OrderRepo) baseSelect() sq.SelectBuilder {
	return postgres.Builder().Select(orderColumns...).From(orderTable)
}

// Create inserts the order with its lines and add-on snapshots.
func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	if err := r.Insert(ctx, orderTable, orderColumns, o); err != nil {
		return err
	}
	if len(o.Lines) == 0 {
		return nil
	}

	lines := postgres.Builder().Insert(lineTable).
		Columns("id", "order_id", "position", "product_id", "quantity", "price")
	addOns := postgres.Builder().Insert(addOnTable).
		Columns(append([]string{"line_id", "position"}, addOnColumns...)...)
	hasAddOns := false
	for i, l := range o.Lines {
		lines = lines.Values(l.ID, o.ID, i, l.ProductID, l.Quantity, l.Price)
		for j, a := range l.AddOns {
			addOns = addOns.Values(l.ID, j, a.ModifierID, a.Name, a.Price, a.IngredientID, a.Quantity, a.WarehouseID)
			hasAddOns = true
		}
	}
	if _, err := r.Exec(ctx, lines); err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	if hasAddOns {
		if _, err := r.Exec(ctx, addOns); err != nil {
			return fmt.Errorf("insert order add-ons: %w", err)
		}
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, oid id.ID) (*orders.Order, error) {
	return r.get(ctx, r.baseSelect().Where(sq.Eq{"id": oid}), oid)
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, oid id.ID) (*orders.Order, error) {
	return r.get(ctx, r.baseSelect().Where(sq.Eq{"id": oid}).Suffix("FOR UPDATE"), oid)
}

func (r *OrderRepo) get(ctx context.Context, q sq.SelectBuilder, oid id.ID) (*orders.Order, error) {
	var o orders.Order
	if err := r.Get(ctx, &o, q, "order", oid); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) loadLines(ctx context.Context, o *orders.Order) error {
	var lines []lineRow
	q := postgres.Builder().Select("order_id", "id", "product_id", "quantity", "price").
		From(lineTable).
		Where(sq.Eq{"order_id": o.ID}).
		OrderBy("position")
	if err := r.Select(ctx, &lines, q); err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}

	lineIDs := make([]id.ID, len(lines))
	for i, l := range lines {
		lineIDs[i] = l.ID
	}
	var addOns []addOnRow
	aq := postgres.Builder().Select(append([]string{"line_id"}, addOnColumns...)...).
		From(addOnTable).
		Where(sq.Eq{"line_id": lineIDs}).
		OrderBy("line_id", "position")
	if err := r.Select(ctx, &addOns, aq); err != nil {
		return fmt.Errorf("load order add-ons: %w", err)
	}
	byLine := make(map[id.ID][]orders.AddOn, len(lines))
	for _, a := range addOns {
		byLine[a.LineID] = append(byLine[a.LineID], a.AddOn)
	}

	o.Lines = make([]orders.Line, len(lines))
	for i, l := range lines {
		o.Lines[i] = l.Line
		o.Lines[i].AddOns = byLine[l.ID]
	}
	return nil
}

// Update persists header fields; lines are immutable once stored.
func (r *OrderRepo) Update(ctx context.Context, o *orders.Order) error {
	q := postgres.UpdateStruct(orderTable, headerColumns, o).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": o.ID})
	if err := r.ExecOne(ctx, q, "order", o.ID); err != nil {
		return err
	}
	o.Touch()
	return nil
}

func (r *OrderRepo) ListByIDsForUpdate(ctx context.Context, ids []id.ID) ([]*orders.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []*orders.Order
	q := r.baseSelect().Where(sq.Eq{"id": ids}).OrderBy("id").Suffix("FOR UPDATE")
	if err := r.Select(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOrphanedCash locks the rows; the caller links them to a shift.
func (r *OrderRepo) ListOrphanedCash(ctx context.Context) ([]*orders.Order, error) {
	var out []*orders.Order
	q := r.baseSelect().
		Where(sq.Eq{"status": orders.StatusCompleted, "payment_method": orders.PaymentCash, "shift_id": nil}).
		OrderBy("id").
		Suffix("FOR UPDATE")
	if err := r.Select(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepo) ListByShift(ctx context.Context, shiftID id.ID) ([]*orders.Order, error) {
	var out []*orders.Order
	if err := r.Select(ctx, &out, r.baseSelect().Where(sq.Eq{"shift_id": shiftID}).OrderBy("id")); err != nil {
		return nil, err
	}
	return out, nil
}
