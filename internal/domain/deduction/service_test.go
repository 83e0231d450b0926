package deduction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/app/apptest"
	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/cash"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/domain/deduction"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/domain/events"
	"restoledger/internal/domain/orders"
)

type kitchen struct {
	*apptest.Fixture
	storage, cell, bar     id.ID
	bun, patty, box, syrup id.ID
	burger                 *recipe.Product
}

// newKitchen builds a burger made in a production cell that draws from
// storage, plus a box that only applies to takeaway orders.
func newKitchen(t *testing.T) *kitchen {
	f := apptest.New(t)
	storage := f.Warehouse("Storage")
	cell := f.ProductionCell("Grill", storage)
	bar := f.Warehouse("Bar")

	bun := f.Ingredient("Bun", "0")
	patty := f.Ingredient("Patty", "0")
	box := f.Ingredient("Box", "0")
	syrup := f.Ingredient("Syrup", "0")
	f.Supply(storage, bun, "100", "1")
	f.Supply(storage, patty, "100", "5")
	f.Supply(storage, box, "100", "0.5")
	f.Supply(bar, syrup, "10", "2")

	burger := f.Product("Burger", cell,
		apptest.Component(bun, "1"),
		apptest.Component(patty, "2"),
		apptest.Packaging(box, "1"),
	)
	return &kitchen{
		Fixture: f,
		storage: storage.ID, cell: cell.ID, bar: bar.ID,
		bun: bun.ID, patty: patty.ID, box: box.ID, syrup: syrup.ID,
		burger: burger,
	}
}

func (k *kitchen) qty(wh, ing id.ID) types.Quantity {
	k.T.Helper()
	q, err := k.Stock.Balance(k.Ctx, wh, ing)
	require.NoError(k.T, err)
	return q
}

func (k *kitchen) order(ch orders.Channel, qty string) *orders.Order {
	return k.Order(ch, orders.PaymentCard, func(o *orders.Order) {
		o.AddLine(k.burger.ID, types.MustQuantity(qty), types.MustMoney("12"))
	})
}

func TestDeductRoutesToStorage(t *testing.T) {
	k := newKitchen(t)
	o := k.order(orders.ChannelInHouse, "2")

	out, err := k.Deduction.Deduct(k.Ctx, o.ID)
	require.NoError(t, err)
	require.False(t, out.Skipped)
	require.Len(t, out.Documents, 1)

	doc := out.Documents[0]
	assert.Equal(t, movement.DocTypeDeduction, doc.Type)
	assert.Equal(t, k.storage, *doc.SourceWarehouseID, "cell deducts from its linked storage")
	assert.Equal(t, o.ID, *doc.OrderID)
	assert.Len(t, doc.Lines, 2, "takeaway box skipped in house")

	apptest.AssertQty(t, "98", k.qty(k.storage, k.bun))
	apptest.AssertQty(t, "96", k.qty(k.storage, k.patty))
	apptest.AssertQty(t, "100", k.qty(k.storage, k.box))
	apptest.AssertQty(t, "0", k.qty(k.cell, k.bun))

	got, err := k.Repos.Orders.GetByID(k.Ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.IsInventoryDeducted)
	assert.Len(t, k.Events.OfType(events.OrderDeducted), 1)
}

func TestDeductIsIdempotent(t *testing.T) {
	k := newKitchen(t)
	o := k.order(orders.ChannelDelivery, "1")

	_, err := k.Deduction.Deduct(k.Ctx, o.ID)
	require.NoError(t, err)
	out, err := k.Deduction.Deduct(k.Ctx, o.ID)
	require.NoError(t, err)

	assert.True(t, out.Skipped)
	apptest.AssertQty(t, "99", k.qty(k.storage, k.bun))
	apptest.AssertQty(t, "99", k.qty(k.storage, k.box))
}

func TestDeductRulesAndAddOns(t *testing.T) {
	k := newKitchen(t)
	bag := k.Ingredient("Bag", "0.2")
	storage, err := k.Warehouses.GetByID(k.Ctx, k.storage)
	require.NoError(t, err)
	k.Rule(recipe.TriggerDelivery, bag, "1", storage)

	bar, err := k.Warehouses.GetByID(k.Ctx, k.bar)
	require.NoError(t, err)
	syrupQty := types.MustQuantity("0.05")
	syrup := recipe.NewModifier("Syrup shot", types.MustMoney("1"))
	syrup.IngredientID = &k.syrup
	syrup.Quantity = &syrupQty
	syrup.WarehouseID = &bar.ID
	require.NoError(t, k.Repos.Recipes.CreateModifier(k.Ctx, syrup))

	o := k.Order(orders.ChannelDelivery, orders.PaymentCard, func(o *orders.Order) {
		line := o.AddLine(k.burger.ID, types.MustQuantity("3"), types.MustMoney("12"))
		line.AddOns = append(line.AddOns, syrup.Snapshot())
	})

	out, err := k.Deduction.Deduct(k.Ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, out.Documents, 2, "one document per storage warehouse")

	apptest.AssertQty(t, "97", k.qty(k.storage, k.box))
	apptest.AssertQty(t, "-1", k.qty(k.storage, bag.ID), "rules are per order, not per item")
	apptest.AssertQty(t, "9.85", k.qty(k.bar, k.syrup), "add-ons scale with line quantity")
}

func TestAddOnFallsBackToLiveModifier(t *testing.T) {
	k := newKitchen(t)
	qty := types.MustQuantity("1")
	cheese := k.Ingredient("Cheese", "3")
	mod := recipe.NewModifier("Extra cheese", types.MustMoney("2"))
	mod.IngredientID = &cheese.ID
	mod.Quantity = &qty
	require.NoError(t, k.Repos.Recipes.CreateModifier(k.Ctx, mod))

	o := k.Order(orders.ChannelInHouse, orders.PaymentCard, func(o *orders.Order) {
		line := o.AddLine(k.burger.ID, types.MustQuantity("1"), types.MustMoney("12"))
		line.AddOns = append(line.AddOns,
			orders.AddOn{ModifierID: mod.ID, Name: mod.Name, Price: mod.Price},
			orders.AddOn{ModifierID: id.New(), Name: "deleted"},
		)
	})

	_, err := k.Deduction.Deduct(k.Ctx, o.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "-1", k.qty(k.storage, cheese.ID), "defaults to the production cell's storage")
}

func TestDeductThenReverseRestoresBalances(t *testing.T) {
	k := newKitchen(t)
	o := k.order(orders.ChannelPickup, "2")

	_, err := k.Deduction.Deduct(k.Ctx, o.ID)
	require.NoError(t, err)
	out, err := k.Deduction.Reverse(k.Ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, out.Documents, 1)
	assert.Equal(t, movement.DocTypeReturn, out.Documents[0].Type)
	assert.Equal(t, k.storage, *out.Documents[0].TargetWarehouseID)

	for _, ing := range []id.ID{k.bun, k.patty, k.box} {
		apptest.AssertQty(t, "100", k.qty(k.storage, ing))
	}

	got, err := k.Repos.Orders.GetByID(k.Ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, got.IsInventoryDeducted)

	out, err = k.Deduction.Reverse(k.Ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, out.Skipped, "reverse without deduction is a no-op")
}

func TestReverseRecomputesFromCurrentRecipe(t *testing.T) {
	k := newKitchen(t)
	o := k.order(orders.ChannelInHouse, "1")

	_, err := k.Deduction.Deduct(k.Ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, k.Repos.Recipes.SetTechCard(k.Ctx, k.burger.ID, []recipe.TechCardItem{
		{IngredientID: k.bun, GrossQty: types.MustQuantity("1"), NetQty: types.MustQuantity("1")},
	}))

	_, err = k.Deduction.Reverse(k.Ctx, o.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "100", k.qty(k.storage, k.bun))
	apptest.AssertQty(t, "98", k.qty(k.storage, k.patty), "changed recipe leaves a mismatch")
}

func TestDeductEmptyOrder(t *testing.T) {
	k := newKitchen(t)
	o := k.Order(orders.ChannelInHouse, orders.PaymentCard, nil)

	out, err := k.Deduction.Deduct(k.Ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Empty(t, out.Documents)

	got, err := k.Repos.Orders.GetByID(k.Ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.IsInventoryDeducted)
}

func TestDeductWithoutWarehouses(t *testing.T) {
	f := apptest.New(t)
	flour := f.Ingredient("Flour", "1")
	bread := f.Product("Bread", nil, apptest.Component(flour, "1"))
	o := f.Order(orders.ChannelInHouse, orders.PaymentCard, func(o *orders.Order) {
		o.AddLine(bread.ID, types.MustQuantity("1"), types.MustMoney("3"))
	})

	out, err := f.Deduction.Deduct(f.Ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, out.Skipped)

	got, err := f.Repos.Orders.GetByID(f.Ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, got.IsInventoryDeducted, "flag stays unset so a later retry can deduct")
}

func TestProductWithoutWarehouseFallsBack(t *testing.T) {
	f := apptest.New(t)
	wh := f.Warehouse("Only")
	flour := f.Ingredient("Flour", "1")
	bread := f.Product("Bread", nil, apptest.Component(flour, "0.5"))
	o := f.Order(orders.ChannelInHouse, orders.PaymentCard, func(o *orders.Order) {
		o.AddLine(bread.ID, types.MustQuantity("4"), types.MustMoney("3"))
	})

	_, err := f.Deduction.Deduct(f.Ctx, o.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "-2", f.Balance(wh, flour))
}

func TestPrimeCost(t *testing.T) {
	k := newKitchen(t)
	o := k.order(orders.ChannelDelivery, "2")

	cost, plan, err := k.Deduction.PrimeCost(k.Ctx, o.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "23", cost, "2x(1x1 + 2x5 + 1x0.5)")
	assert.False(t, plan.IsEmpty())

	apptest.AssertQty(t, "100", k.qty(k.storage, k.bun), "prime cost writes nothing")
	assert.Empty(t, k.Events.OfType(events.OrderDeducted))
}

func TestOnStatusChangeCancelWithWaste(t *testing.T) {
	k := newKitchen(t)
	o := k.order(orders.ChannelInHouse, "1")

	_, err := k.Deduction.OnStatusChange(k.Ctx, o.ID, orders.StatusCompleted, deduction.StatusChangeOptions{})
	require.NoError(t, err)
	out, err := k.Deduction.OnStatusChange(k.Ctx, o.ID, orders.StatusCancelled, deduction.StatusChangeOptions{SkipReturn: true})
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Empty(t, out.Documents)

	apptest.AssertQty(t, "99", k.qty(k.storage, k.bun), "wasted stock is not returned")

	got, err := k.Repos.Orders.GetByID(k.Ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.StockWrittenOff)
	assert.Equal(t, orders.StatusCancelled, got.Status)

	out, err = k.Deduction.Reverse(k.Ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, out.Skipped)
}

func TestOnStatusChangeCashFlow(t *testing.T) {
	k := newKitchen(t)
	cashier := k.Employee("Cashier", cash.RoleCashier)
	courier := k.Employee("Courier", cash.RoleCourier)
	shift, err := k.Cash.OpenShift(k.Ctx, cashier.ID, types.MustMoney("100"))
	require.NoError(t, err)

	o := k.Order(orders.ChannelDelivery, orders.PaymentCash, func(o *orders.Order) {
		o.AddLine(k.burger.ID, types.MustQuantity("1"), types.MustMoney("40"))
		o.CourierID = &courier.ID
	})

	_, err = k.Deduction.OnStatusChange(k.Ctx, o.ID, orders.StatusCompleted,
		deduction.StatusChangeOptions{EmployeeID: &courier.ID})
	require.NoError(t, err)

	got, err := k.Repos.Orders.GetByID(k.Ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, &shift.ID, got.ShiftID)
	assert.False(t, got.CashTurnedIn)
	assert.True(t, got.IsInventoryDeducted)

	emp, err := k.Cash.GetEmployee(k.Ctx, courier.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "40", emp.CashBalance)

	_, err = k.Deduction.OnStatusChange(k.Ctx, o.ID, orders.StatusCancelled, deduction.StatusChangeOptions{})
	require.NoError(t, err)

	emp, err = k.Cash.GetEmployee(k.Ctx, courier.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "0", emp.CashBalance)
	apptest.AssertQty(t, "100", k.qty(k.storage, k.bun))
}

func TestOnStatusChangeRepeatedCompletionIsNoop(t *testing.T) {
	k := newKitchen(t)
	cashier := k.Employee("Cashier", cash.RoleCashier)
	courier := k.Employee("Courier", cash.RoleCourier)
	shift, err := k.Cash.OpenShift(k.Ctx, cashier.ID, types.Zero())
	require.NoError(t, err)

	o := k.Order(orders.ChannelDelivery, orders.PaymentCash, func(o *orders.Order) {
		o.AddLine(k.burger.ID, types.MustQuantity("1"), types.MustMoney("40"))
		o.CourierID = &courier.ID
	})
	opts := deduction.StatusChangeOptions{EmployeeID: &courier.ID}

	_, err = k.Deduction.OnStatusChange(k.Ctx, o.ID, orders.StatusCompleted, opts)
	require.NoError(t, err)
	_, err = k.Cash.Handover(k.Ctx, shift.ID, courier.ID, []id.ID{o.ID})
	require.NoError(t, err)

	out, err := k.Deduction.OnStatusChange(k.Ctx, o.ID, orders.StatusCompleted, opts)
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Empty(t, out.Documents)

	emp, err := k.Cash.GetEmployee(k.Ctx, courier.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "0", emp.CashBalance)

	got, err := k.Repos.Orders.GetByID(k.Ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.CashTurnedIn)
	apptest.AssertQty(t, "99", k.qty(k.storage, k.bun), "stock deducted once")
	assert.Len(t, k.Events.OfType(events.OrderDeducted), 1)
}

func TestOnStatusChangeCompletedLinksCardOrder(t *testing.T) {
	k := newKitchen(t)
	cashier := k.Employee("Cashier", cash.RoleCashier)
	shift, err := k.Cash.OpenShift(k.Ctx, cashier.ID, types.Zero())
	require.NoError(t, err)

	o := k.Order(orders.ChannelInHouse, orders.PaymentCard, func(o *orders.Order) {
		o.AddLine(k.burger.ID, types.MustQuantity("1"), types.MustMoney("25"))
	})
	_, err = k.Deduction.OnStatusChange(k.Ctx, o.ID, orders.StatusCompleted, deduction.StatusChangeOptions{})
	require.NoError(t, err)

	got, err := k.Repos.Orders.GetByID(k.Ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ShiftID)
	assert.Equal(t, shift.ID, *got.ShiftID)

	stats, err := k.Cash.ShiftStatistics(k.Ctx, shift.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "25", stats.CardSales)
}

func TestDeductFailureRollsBack(t *testing.T) {
	k := newKitchen(t)
	ghost := id.New()
	require.NoError(t, k.Repos.Recipes.SetTechCard(k.Ctx, k.burger.ID, []recipe.TechCardItem{
		{IngredientID: k.bun, GrossQty: types.MustQuantity("1")},
		{IngredientID: ghost, GrossQty: types.MustQuantity("1")},
	}))
	o := k.order(orders.ChannelInHouse, "1")

	_, err := k.Deduction.Deduct(k.Ctx, o.ID)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
	apptest.AssertQty(t, "100", k.qty(k.storage, k.bun))
}
