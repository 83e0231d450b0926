package deduction

import (
	"context"
	"fmt"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/domain/catalogs/warehouse"
	"restoledger/internal/domain/orders"
	"restoledger/pkg/logger"
)

// Warehouses resolves warehouses and the fallback location.
type Warehouses interface {
	GetByID(ctx context.Context, id id.ID) (*warehouse.Warehouse, error)
	Fallback(ctx context.Context, reason string, kv ...any) (*warehouse.Warehouse, error)
}

var _ Warehouses = (*warehouse.Service)(nil)

// Resolver computes what an order consumes from current recipes, rules and
// costs. It never looks at what was deducted before.
type Resolver struct {
	recipes     recipe.Repository
	ingredients ingredient.Repository
	warehouses  Warehouses
}

// NewResolver creates a resolver.
func NewResolver(recipes recipe.Repository, ingredients ingredient.Repository, warehouses Warehouses) *Resolver {
	return &Resolver{
		recipes:     recipes,
		ingredients: ingredients,
		warehouses:  warehouses,
	}
}

// ResolveOrder resolves every line and every matching auto-deduction rule
// and groups the result by storage warehouse.
func (r *Resolver) ResolveOrder(ctx context.Context, order *orders.Order) (*Plan, error) {
	var all []Deduction
	for _, line := range order.Lines {
		lineDeductions, err := r.ResolveLine(ctx, order.Channel, line)
		if err != nil {
			return nil, fmt.Errorf("resolve line %s: %w", line.ID, err)
		}
		all = append(all, lineDeductions...)
	}

	ruleDeductions, err := r.ResolveRules(ctx, order.Channel)
	if err != nil {
		return nil, err
	}
	all = append(all, ruleDeductions...)

	if err := r.price(ctx, all); err != nil {
		return nil, err
	}

	plan := &Plan{}
	for _, d := range all {
		plan.Add(d)
	}
	return plan, nil
}

// ResolveLine resolves a sold line's tech card and add-ons. Prices are
// filled in by ResolveOrder.
func (r *Resolver) ResolveLine(ctx context.Context, channel orders.Channel, line orders.Line) ([]Deduction, error) {
	product, err := r.recipes.GetProduct(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}

	production, err := r.productionWarehouse(ctx, product)
	if err != nil {
		return nil, err
	}
	storage := production.StorageID()

	items, err := r.recipes.TechCard(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("load tech card: %w", err)
	}

	out := make([]Deduction, 0, len(items)+len(line.AddOns))
	for _, item := range items {
		if !item.AppliesTo(channel) {
			continue
		}
		out = append(out, Deduction{
			WarehouseID:  storage,
			IngredientID: item.IngredientID,
			Quantity:     item.GrossQty.Mul(line.Quantity),
			Source:       SourceTechCard,
		})
	}

	for _, addOn := range line.AddOns {
		snap, ok, err := r.addOnSnapshot(ctx, addOn)
		if err != nil {
			return nil, err
		}
		if !ok || !snap.Quantity.IsPositive() {
			continue
		}

		target := production.ID
		if snap.WarehouseID != nil {
			target = *snap.WarehouseID
		}
		addOnStorage, err := r.storageOf(ctx, target)
		if err != nil {
			return nil, err
		}

		out = append(out, Deduction{
			WarehouseID:  addOnStorage,
			IngredientID: snap.IngredientID,
			Quantity:     snap.Quantity.Mul(line.Quantity),
			Source:       SourceAddOn,
		})
	}
	return out, nil
}

// ResolveRules returns one unscaled deduction per rule matching the channel.
func (r *Resolver) ResolveRules(ctx context.Context, channel orders.Channel) ([]Deduction, error) {
	rules, err := r.recipes.ListActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load auto-deduction rules: %w", err)
	}

	var out []Deduction
	for _, rule := range rules {
		if !rule.Matches(channel) {
			continue
		}
		storage, err := r.storageOf(ctx, rule.WarehouseID)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		out = append(out, Deduction{
			WarehouseID:  storage,
			IngredientID: rule.IngredientID,
			Quantity:     rule.Quantity,
			Source:       SourceRule,
		})
	}
	return out, nil
}

func (r *Resolver) productionWarehouse(ctx context.Context, product *recipe.Product) (*warehouse.Warehouse, error) {
	if product.ProductionWarehouseID != nil {
		return r.warehouses.GetByID(ctx, *product.ProductionWarehouseID)
	}
	return r.warehouses.Fallback(ctx, "product has no production warehouse", "product_id", product.ID)
}

// storageOf resolves a warehouse to its storage in a single hop.
func (r *Resolver) storageOf(ctx context.Context, warehouseID id.ID) (id.ID, error) {
	w, err := r.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return id.ID{}, err
	}
	return w.StorageID(), nil
}

// addOnSnapshot prefers the data captured at sale time and falls back to
// the live modifier when the snapshot is incomplete.
func (r *Resolver) addOnSnapshot(ctx context.Context, addOn orders.AddOn) (orders.Snapshot, bool, error) {
	if snap, ok := addOn.CompleteSnapshot(); ok {
		return snap, true, nil
	}

	mod, err := r.recipes.GetModifier(ctx, addOn.ModifierID)
	if err != nil {
		if apperror.IsNotFound(err) {
			logger.Warn(ctx, "add-on modifier no longer exists, skipping",
				"modifier_id", addOn.ModifierID)
			return orders.Snapshot{}, false, nil
		}
		return orders.Snapshot{}, false, err
	}
	if !mod.Consumes() {
		return orders.Snapshot{}, false, nil
	}
	snap, ok := mod.Snapshot().CompleteSnapshot()
	return snap, ok, nil
}

func (r *Resolver) price(ctx context.Context, deductions []Deduction) error {
	if len(deductions) == 0 {
		return nil
	}
	ids := make([]id.ID, 0, len(deductions))
	for _, d := range deductions {
		ids = append(ids, d.IngredientID)
	}
	ingredients, err := r.ingredients.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load ingredients: %w", err)
	}
	for i := range deductions {
		ing, ok := ingredients[deductions[i].IngredientID]
		if !ok {
			return apperror.NewNotFound("ingredient", deductions[i].IngredientID.String())
		}
		deductions[i].UnitPrice = ing.CurrentCost
	}
	return nil
}
