package stock

import (
	"context"
	"fmt"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/pkg/logger"
)

// Service provides business operations for the stock register.
// Transactions are managed by the caller (document processor, reconciliation).
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Lock returns the locked balance for the pair, creating it at zero if absent.
// Every read-modify-write of a balance goes through here.
func (s *Service) Lock(ctx context.Context, warehouseID, ingredientID id.ID) (*entity.StockBalance, error) {
	balance, err := s.repo.GetOrCreateForUpdate(ctx, warehouseID, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("lock balance %s/%s: %w", warehouseID, ingredientID, err)
	}
	return balance, nil
}

// Adjust adds delta (signed) to the balance under its row lock.
// Negative results are allowed and only logged.
func (s *Service) Adjust(ctx context.Context, warehouseID, ingredientID id.ID, delta types.Quantity) (*entity.StockBalance, error) {
	balance, err := s.Lock(ctx, warehouseID, ingredientID)
	if err != nil {
		return nil, err
	}

	balance.Quantity = balance.Quantity.Add(delta)
	if err := s.repo.SaveBalance(ctx, balance); err != nil {
		return nil, fmt.Errorf("save balance: %w", err)
	}

	if balance.Quantity.IsNegative() {
		logger.Warn(ctx, "stock balance went negative",
			"warehouse_id", warehouseID,
			"ingredient_id", ingredientID,
			"quantity", balance.Quantity.String(),
		)
	}
	return balance, nil
}

// RecordMovements appends journal rows for a processed document.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if !m.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Debug(ctx, "recorded stock movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)
	return nil
}

// IngredientTotal returns the ingredient quantity summed across all warehouses.
func (s *Service) IngredientTotal(ctx context.Context, ingredientID id.ID) (types.Quantity, error) {
	total, err := s.repo.SumByIngredient(ctx, ingredientID)
	if err != nil {
		return types.Zero(), fmt.Errorf("sum balances: %w", err)
	}
	return total, nil
}

// Balance reads a single balance without locking.
func (s *Service) Balance(ctx context.Context, warehouseID, ingredientID id.ID) (types.Quantity, error) {
	b, err := s.repo.GetBalance(ctx, warehouseID, ingredientID)
	if err != nil {
		return types.Zero(), err
	}
	return b.Quantity, nil
}

// WarehouseStock returns all non-zero balances in a warehouse.
func (s *Service) WarehouseStock(ctx context.Context, warehouseID id.ID) ([]entity.StockBalance, error) {
	return s.repo.ListByWarehouse(ctx, warehouseID, BalanceFilter{ExcludeZero: true})
}

// NegativeBalances lists balances below zero. The ledger never blocks
// negative stock, so this is how operators find it.
func (s *Service) NegativeBalances(ctx context.Context) ([]entity.StockBalance, error) {
	return s.repo.ListNegative(ctx)
}

// Movements returns the journal rows written by a document.
func (s *Service) Movements(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	return s.repo.GetMovementsByRecorder(ctx, recorderID)
}
