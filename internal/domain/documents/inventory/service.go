// Package inventory turns physical stock counts into corrective
// surplus and shortage documents.
package inventory

import (
	"context"
	"fmt"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/tx"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/domain/registers/stock"
	"restoledger/pkg/logger"
)

// StockReader is the slice of the stock register reconciliation needs.
type StockReader interface {
	Lock(ctx context.Context, warehouseID, ingredientID id.ID) (*entity.StockBalance, error)
	WarehouseStock(ctx context.Context, warehouseID id.ID) ([]entity.StockBalance, error)
}

var _ StockReader = (*stock.Service)(nil)

// DocumentProcessor creates, applies and completes movement documents.
type DocumentProcessor interface {
	Create(ctx context.Context, doc *movement.Document) error
	ProcessMovement(ctx context.Context, req movement.Request) (*movement.Document, error)
	Complete(ctx context.Context, doc *movement.Document) error
}

var _ DocumentProcessor = (*movement.Processor)(nil)

// Service prepares and reconciles inventory counts.
type Service struct {
	docs        movement.Repository
	processor   DocumentProcessor
	stock       StockReader
	ingredients ingredient.Repository
	txManager   tx.Manager
}

// NewService creates a new inventory service.
func NewService(
	docs movement.Repository,
	processor DocumentProcessor,
	stock StockReader,
	ingredients ingredient.Repository,
	txManager tx.Manager,
) *Service {
	return &Service{
		docs:        docs,
		processor:   processor,
		stock:       stock,
		ingredients: ingredients,
		txManager:   txManager,
	}
}

// CountLine is a counted quantity for one ingredient.
type CountLine struct {
	IngredientID id.ID
	Counted      types.Quantity
}

// Result of a reconciliation. Surplus and Shortage are nil when no
// difference of that sign was found.
type Result struct {
	Count    *movement.Document `json:"count"`
	Surplus  *movement.Document `json:"surplus,omitempty"`
	Shortage *movement.Document `json:"shortage,omitempty"`
}

// PrepareCount creates an unprocessed count sheet for the warehouse,
// pre-filled with the current book quantity of every non-zero balance.
func (s *Service) PrepareCount(ctx context.Context, warehouseID id.ID, comment string) (*movement.Document, error) {
	doc := movement.NewDocument(movement.DocTypeInventory)
	doc.SourceWarehouseID = &warehouseID
	doc.Comment = comment

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		balances, err := s.stock.WarehouseStock(ctx, warehouseID)
		if err != nil {
			return fmt.Errorf("load balances: %w", err)
		}
		for _, b := range balances {
			doc.AddLine(b.IngredientID, types.ClampNonNegative(b.Quantity), types.Zero())
		}
		return s.processor.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "count sheet prepared",
		"document_id", doc.ID, "warehouse_id", warehouseID, "lines", len(doc.Lines))
	return doc, nil
}

// RecordCounts replaces the lines of an unprocessed count with counted quantities.
func (s *Service) RecordCounts(ctx context.Context, countID id.ID, lines []CountLine) (*movement.Document, error) {
	var doc *movement.Document
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := s.loadCount(ctx, countID)
		if err != nil {
			return err
		}
		d.Lines = d.Lines[:0]
		for _, l := range lines {
			d.AddLine(l.IngredientID, l.Counted, types.Zero())
		}
		if err := d.Validate(ctx); err != nil {
			return err
		}
		if err := ensureUniqueIngredients(d); err != nil {
			return err
		}
		if err := s.docs.ReplaceLines(ctx, d); err != nil {
			return fmt.Errorf("replace lines: %w", err)
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Reconcile compares each counted line with the locked book balance and
// posts at most one supply (surplus) and one writeoff (shortage), both
// priced at current cost and referencing the count. The count is then
// marked processed. Zero differences produce no lines.
func (s *Service) Reconcile(ctx context.Context, countID id.ID) (*Result, error) {
	var result *Result
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		count, err := s.loadCount(ctx, countID)
		if err != nil {
			return err
		}
		if count.SourceWarehouseID == nil {
			return apperror.NewMissingWarehouse(string(movement.DocTypeInventory), "source")
		}
		if err := ensureUniqueIngredients(count); err != nil {
			return err
		}
		warehouseID := *count.SourceWarehouseID

		ingredientIDs := make([]id.ID, 0, len(count.Lines))
		for _, l := range count.Lines {
			ingredientIDs = append(ingredientIDs, l.IngredientID)
		}
		costs, err := s.ingredients.GetByIDs(ctx, ingredientIDs)
		if err != nil {
			return fmt.Errorf("load ingredients: %w", err)
		}

		surplus := movement.Request{
			Type:              movement.DocTypeSupply,
			TargetWarehouseID: &warehouseID,
			ReferenceID:       &count.ID,
			Comment:           "inventory surplus " + count.Number,
		}
		shortage := movement.Request{
			Type:              movement.DocTypeWriteOff,
			SourceWarehouseID: &warehouseID,
			ReferenceID:       &count.ID,
			Comment:           "inventory shortage " + count.Number,
		}

		for _, line := range count.Lines {
			balance, err := s.stock.Lock(ctx, warehouseID, line.IngredientID)
			if err != nil {
				return err
			}
			ing, ok := costs[line.IngredientID]
			if !ok {
				return apperror.NewNotFound("ingredient", line.IngredientID.String())
			}

			diff := line.Quantity.Sub(balance.Quantity)
			switch {
			case diff.IsPositive():
				surplus.Lines = append(surplus.Lines, movement.LineInput{
					IngredientID: line.IngredientID, Quantity: diff, UnitPrice: ing.CurrentCost,
				})
			case diff.IsNegative():
				shortage.Lines = append(shortage.Lines, movement.LineInput{
					IngredientID: line.IngredientID, Quantity: diff.Abs(), UnitPrice: ing.CurrentCost,
				})
			}
		}

		result = &Result{Count: count}
		if len(surplus.Lines) > 0 {
			if result.Surplus, err = s.processor.ProcessMovement(ctx, surplus); err != nil {
				return fmt.Errorf("post surplus: %w", err)
			}
		}
		if len(shortage.Lines) > 0 {
			if result.Shortage, err = s.processor.ProcessMovement(ctx, shortage); err != nil {
				return fmt.Errorf("post shortage: %w", err)
			}
		}

		if err := s.processor.Complete(ctx, count); err != nil {
			return err
		}

		logger.Info(ctx, "inventory reconciled",
			"count_id", count.ID,
			"warehouse_id", warehouseID,
			"surplus_lines", len(surplus.Lines),
			"shortage_lines", len(shortage.Lines),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) loadCount(ctx context.Context, countID id.ID) (*movement.Document, error) {
	doc, err := s.docs.GetForUpdate(ctx, countID)
	if err != nil {
		return nil, err
	}
	if doc.Type != movement.DocTypeInventory {
		return nil, apperror.NewValidation("document is not an inventory count").
			WithDetail("document_id", countID.String()).
			WithDetail("doc_type", string(doc.Type))
	}
	if err := doc.EnsureNotProcessed(); err != nil {
		return nil, err
	}
	return doc, nil
}

func ensureUniqueIngredients(doc *movement.Document) error {
	seen := make(map[id.ID]struct{}, len(doc.Lines))
	for _, l := range doc.Lines {
		if _, dup := seen[l.IngredientID]; dup {
			return apperror.NewValidation("ingredient counted twice").
				WithDetail("ingredient_id", l.IngredientID.String())
		}
		seen[l.IngredientID] = struct{}{}
	}
	return nil
}
