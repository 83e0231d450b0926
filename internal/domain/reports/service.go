package reports

import (
	"context"
	"time"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/tx"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/domain/catalogs/warehouse"
)

// MaxTurnoverPeriod bounds a turnover request.
const MaxTurnoverPeriod = 366 * 24 * time.Hour

// StockReader lists a warehouse's balances.
type StockReader interface {
	WarehouseStock(ctx context.Context, warehouseID id.ID) ([]entity.StockBalance, error)
}

// Service provides report generation operations.
type Service struct {
	repo        Repository
	stock       StockReader
	ingredients ingredient.Repository
	warehouses  warehouse.Repository
	txManager   tx.Manager
	now         func() time.Time
}

// NewService creates a new reports service.
func NewService(repo Repository, stock StockReader, ingredients ingredient.Repository, warehouses warehouse.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:        repo,
		stock:       stock,
		ingredients: ingredients,
		warehouses:  warehouses,
		txManager:   txManager,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// StockTurnover reports opening, receipt, expense and closing quantities for
// every ingredient moved in or before the period.
func (s *Service) StockTurnover(ctx context.Context, filter TurnoverFilter) (*TurnoverReport, error) {
	if filter.From.IsZero() || filter.To.IsZero() {
		return nil, apperror.NewValidation("from and to are required")
	}
	if !filter.From.Before(filter.To) {
		return nil, apperror.NewValidation("from must be before to")
	}
	if filter.To.Sub(filter.From) > MaxTurnoverPeriod {
		return nil, apperror.NewValidation("period is too long").WithDetail("max_days", int(MaxTurnoverPeriod.Hours()/24))
	}

	var rows []TurnoverRow
	err := s.snapshot(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.repo.Turnover(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	report := &TurnoverReport{
		From:         filter.From,
		To:           filter.To,
		Items:        make([]TurnoverRow, 0, len(rows)),
		TotalReceipt: types.Zero(),
		TotalExpense: types.Zero(),
	}
	for _, r := range rows {
		r.Closing = r.Opening.Add(r.Receipt).Sub(r.Expense)
		report.TotalReceipt = report.TotalReceipt.Add(r.Receipt)
		report.TotalExpense = report.TotalExpense.Add(r.Expense)
		report.Items = append(report.Items, r)
	}
	return report, nil
}

// StockValuation values a warehouse's current stock at current costs.
func (s *Service) StockValuation(ctx context.Context, warehouseID id.ID) (*ValuationReport, error) {
	var (
		wh          *warehouse.Warehouse
		balances    []entity.StockBalance
		ingredients map[id.ID]*ingredient.Ingredient
	)
	err := s.snapshot(ctx, func(ctx context.Context) error {
		var err error
		if wh, err = s.warehouses.GetByID(ctx, warehouseID); err != nil {
			return err
		}
		if balances, err = s.stock.WarehouseStock(ctx, warehouseID); err != nil {
			return err
		}
		ids := make([]id.ID, 0, len(balances))
		for _, b := range balances {
			ids = append(ids, b.IngredientID)
		}
		ingredients, err = s.ingredients.GetByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	report := &ValuationReport{
		WarehouseID:   wh.ID,
		WarehouseName: wh.Name,
		AsOf:          s.now(),
		Items:         make([]ValuationItem, 0, len(balances)),
		TotalValue:    types.Zero(),
	}
	for _, b := range balances {
		item := ValuationItem{IngredientID: b.IngredientID, Quantity: b.Quantity, UnitCost: types.Zero()}
		if ing, ok := ingredients[b.IngredientID]; ok {
			item.IngredientName = ing.Name
			item.Unit = ing.Unit
			item.UnitCost = ing.CurrentCost
		}
		item.Value = item.Quantity.Mul(item.UnitCost).Round(2)
		report.TotalValue = report.TotalValue.Add(item.Value)
		report.Items = append(report.Items, item)
	}
	return report, nil
}

// snapshot runs the reads of one report in a single transaction, read-only
// where the backend supports it, so balances and costs agree.
func (s *Service) snapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txManager == nil {
		return fn(ctx)
	}
	if ro, ok := s.txManager.(tx.ReadOnlyManager); ok {
		return ro.ReadOnly(ctx, fn)
	}
	return s.txManager.RunInTransaction(ctx, fn)
}
