// Package production manufactures semi-finished goods from their sub-recipe
// and rolls the raw material cost up into the produced ingredient.
package production

import (
	"context"
	"fmt"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/core/tx"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/domain/documents/movement"
	"restoledger/pkg/logger"
)

// MovementProcessor creates and applies movement documents.
type MovementProcessor interface {
	ProcessMovement(ctx context.Context, req movement.Request) (*movement.Document, error)
}

// Service runs production batches.
type Service struct {
	ingredients ingredient.Repository
	recipes     recipe.Repository
	processor   MovementProcessor
	txManager   tx.Manager
}

// NewService creates a production service.
func NewService(
	ingredients ingredient.Repository,
	recipes recipe.Repository,
	processor MovementProcessor,
	txManager tx.Manager,
) *Service {
	return &Service{
		ingredients: ingredients,
		recipes:     recipes,
		processor:   processor,
		txManager:   txManager,
	}
}

// Result describes a completed production batch.
type Result struct {
	WriteOff       *movement.Document `json:"writeOff"`
	Supply         *movement.Document `json:"supply"`
	TotalBatchCost types.Money        `json:"totalBatchCost"`
	UnitCost       types.Money        `json:"unitCost"`
}

// Produce writes off quantity x recipe of raw materials from warehouseID and
// supplies quantity units of the semi-finished ingredient into the same
// warehouse, priced at the batch unit cost. The supply goes through the
// weighted average, so existing stock of the good is blended, not overwritten.
func (s *Service) Produce(ctx context.Context, ingredientID id.ID, quantity types.Quantity, warehouseID id.ID) (*Result, error) {
	var result *Result
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		good, err := s.ingredients.GetByID(ctx, ingredientID)
		if err != nil {
			return err
		}
		if !good.IsSemiFinished {
			return apperror.NewNotManufacturable(ingredientID.String())
		}
		components, err := s.recipes.SemiFinishedRecipe(ctx, ingredientID)
		if err != nil {
			return fmt.Errorf("load recipe: %w", err)
		}
		if len(components) == 0 {
			return apperror.NewNotManufacturable(ingredientID.String())
		}
		if !quantity.IsPositive() {
			return apperror.NewInvalidQuantity(quantity.String())
		}

		childIDs := make([]id.ID, 0, len(components))
		for _, c := range components {
			childIDs = append(childIDs, c.IngredientID)
		}
		children, err := s.ingredients.GetByIDs(ctx, childIDs)
		if err != nil {
			return fmt.Errorf("load components: %w", err)
		}

		writeOff := movement.Request{
			Type:              movement.DocTypeWriteOff,
			SourceWarehouseID: &warehouseID,
			Comment:           fmt.Sprintf("production of %s x %s", good.Name, quantity),
		}
		total := types.Zero()
		for _, c := range components {
			child, ok := children[c.IngredientID]
			if !ok {
				return apperror.NewNotFound("ingredient", c.IngredientID.String())
			}
			required := c.GrossQty.Mul(quantity)
			total = total.Add(required.Mul(child.CurrentCost))
			writeOff.Lines = append(writeOff.Lines, movement.LineInput{
				IngredientID: c.IngredientID,
				Quantity:     required,
				UnitPrice:    child.CurrentCost,
			})
		}
		unitCost := types.RoundCost(total.Div(quantity))

		woDoc, err := s.processor.ProcessMovement(ctx, writeOff)
		if err != nil {
			return fmt.Errorf("write off components: %w", err)
		}

		supDoc, err := s.processor.ProcessMovement(ctx, movement.Request{
			Type:              movement.DocTypeSupply,
			TargetWarehouseID: &warehouseID,
			ReferenceID:       &woDoc.ID,
			Comment:           fmt.Sprintf("production output of %s", good.Name),
			Lines: []movement.LineInput{{
				IngredientID: ingredientID,
				Quantity:     quantity,
				UnitPrice:    unitCost,
			}},
		})
		if err != nil {
			return fmt.Errorf("supply produced good: %w", err)
		}

		result = &Result{
			WriteOff:       woDoc,
			Supply:         supDoc,
			TotalBatchCost: total,
			UnitCost:       unitCost,
		}
		logger.Info(ctx, "production batch completed",
			"ingredient_id", ingredientID,
			"quantity", quantity.String(),
			"warehouse_id", warehouseID,
			"total_batch_cost", total.String(),
			"unit_cost", unitCost.String(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
