// Package apptest builds in-memory ledgers and catalog fixtures for tests.
package apptest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"restoledger/internal/app"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/cash"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/domain/catalogs/warehouse"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/domain/orders"
)

// Fixture is an in-memory ledger with helpers for building catalogs.
type Fixture struct {
	*app.InMemory
	T   testing.TB
	Ctx context.Context
}

// New returns a fixture over an empty store.
func New(t testing.TB) *Fixture {
	t.Helper()
	return &Fixture{InMemory: app.NewInMemory(), T: t, Ctx: context.Background()}
}

// Warehouse creates a storage warehouse.
func (f *Fixture) Warehouse(name string) *warehouse.Warehouse {
	f.T.Helper()
	w := warehouse.NewWarehouse(name)
	require.NoError(f.T, f.Warehouses.Create(f.Ctx, w))
	return w
}

// ProductionCell creates a production cell linked to storage (may be nil).
func (f *Fixture) ProductionCell(name string, storage *warehouse.Warehouse) *warehouse.Warehouse {
	f.T.Helper()
	var link *id.ID
	if storage != nil {
		link = &storage.ID
	}
	w := warehouse.NewProductionCell(name, link)
	require.NoError(f.T, f.Warehouses.Create(f.Ctx, w))
	return w
}

// Ingredient creates a raw ingredient with the given current cost.
func (f *Fixture) Ingredient(name, cost string) *ingredient.Ingredient {
	f.T.Helper()
	ing := ingredient.NewIngredient(name, "kg")
	ing.CurrentCost = types.MustMoney(cost)
	require.NoError(f.T, f.Ingredients.Create(f.Ctx, ing))
	return ing
}

// SemiFinished creates a semi-finished ingredient with a sub-recipe.
func (f *Fixture) SemiFinished(name string, items ...recipe.SemiFinishedItem) *ingredient.Ingredient {
	f.T.Helper()
	ing := ingredient.NewIngredient(name, "kg")
	ing.IsSemiFinished = true
	require.NoError(f.T, f.Ingredients.Create(f.Ctx, ing))
	require.NoError(f.T, f.Repos.Recipes.SetSemiFinishedRecipe(f.Ctx, ing.ID, items))
	return ing
}

// Product creates a product with a tech card.
func (f *Fixture) Product(name string, productionWarehouse *warehouse.Warehouse, items ...recipe.TechCardItem) *recipe.Product {
	f.T.Helper()
	var wh *id.ID
	if productionWarehouse != nil {
		wh = &productionWarehouse.ID
	}
	p := recipe.NewProduct(name, wh)
	require.NoError(f.T, f.Repos.Recipes.CreateProduct(f.Ctx, p))
	require.NoError(f.T, f.Repos.Recipes.SetTechCard(f.Ctx, p.ID, items))
	return p
}

// Component is a tech card line.
func Component(ing *ingredient.Ingredient, gross string) recipe.TechCardItem {
	q := types.MustQuantity(gross)
	return recipe.TechCardItem{IngredientID: ing.ID, GrossQty: q, NetQty: q}
}

// Packaging is a takeaway-only tech card line.
func Packaging(ing *ingredient.Ingredient, gross string) recipe.TechCardItem {
	item := Component(ing, gross)
	item.IsTakeaway = true
	return item
}

// Child is a semi-finished recipe line.
func Child(ing *ingredient.Ingredient, gross string) recipe.SemiFinishedItem {
	return recipe.SemiFinishedItem{IngredientID: ing.ID, GrossQty: types.MustQuantity(gross)}
}

// Rule creates an active auto-deduction rule.
func (f *Fixture) Rule(trigger recipe.Trigger, ing *ingredient.Ingredient, qty string, wh *warehouse.Warehouse) *recipe.AutoDeductionRule {
	f.T.Helper()
	r := &recipe.AutoDeductionRule{
		BaseEntity:   entity.NewBaseEntity(),
		Name:         "rule " + string(trigger),
		Trigger:      trigger,
		IngredientID: ing.ID,
		Quantity:     types.MustQuantity(qty),
		WarehouseID:  wh.ID,
		IsActive:     true,
	}
	require.NoError(f.T, f.Repos.Recipes.CreateRule(f.Ctx, r))
	return r
}

// Supply processes a supply of qty at price into wh.
func (f *Fixture) Supply(wh *warehouse.Warehouse, ing *ingredient.Ingredient, qty, price string) *movement.Document {
	f.T.Helper()
	doc, err := f.Documents.ProcessMovement(f.Ctx, movement.Request{
		Type:              movement.DocTypeSupply,
		TargetWarehouseID: &wh.ID,
		Lines: []movement.LineInput{{
			IngredientID: ing.ID,
			Quantity:     types.MustQuantity(qty),
			UnitPrice:    types.MustMoney(price),
		}},
	})
	require.NoError(f.T, err)
	return doc
}

// Balance reads a stock balance.
func (f *Fixture) Balance(wh *warehouse.Warehouse, ing *ingredient.Ingredient) types.Quantity {
	f.T.Helper()
	q, err := f.Stock.Balance(f.Ctx, wh.ID, ing.ID)
	require.NoError(f.T, err)
	return q
}

// Cost reads an ingredient's current cost.
func (f *Fixture) Cost(ing *ingredient.Ingredient) types.Money {
	f.T.Helper()
	got, err := f.Repos.Ingredients.GetByID(f.Ctx, ing.ID)
	require.NoError(f.T, err)
	return got.CurrentCost
}

// Order stores an order built by build.
func (f *Fixture) Order(channel orders.Channel, payment orders.PaymentMethod, build func(o *orders.Order)) *orders.Order {
	f.T.Helper()
	o := orders.NewOrder(channel, payment)
	o.Number = "ORD-" + o.ID.String()[:8]
	if build != nil {
		build(o)
	}
	require.NoError(f.T, f.Repos.Orders.Create(f.Ctx, o))
	return o
}

// Employee creates a staff member.
func (f *Fixture) Employee(name string, role cash.Role) *cash.Employee {
	f.T.Helper()
	e := cash.NewEmployee(name, role)
	require.NoError(f.T, f.Cash.CreateEmployee(f.Ctx, e))
	return e
}

// AssertQty compares decimals by value.
func AssertQty(t testing.TB, want string, got types.Quantity, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, types.MustQuantity(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}
