package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/app/apptest"
	"restoledger/internal/core/apperror"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/documents/inventory"
	"restoledger/internal/domain/documents/movement"
)

func TestReconcileSurplusAndShortage(t *testing.T) {
	f := apptest.New(t)
	wh := f.Warehouse("Main")
	flour := f.Ingredient("Flour", "0")
	sugar := f.Ingredient("Sugar", "0")
	f.Supply(wh, flour, "10", "2")
	f.Supply(wh, sugar, "5", "4")

	count, err := f.Inventory.PrepareCount(f.Ctx, wh.ID, "monthly")
	require.NoError(t, err)
	require.Len(t, count.Lines, 2)
	assert.False(t, count.Processed)

	_, err = f.Inventory.RecordCounts(f.Ctx, count.ID, []inventory.CountLine{
		{IngredientID: flour.ID, Counted: types.MustQuantity("12")},
		{IngredientID: sugar.ID, Counted: types.MustQuantity("3.5")},
	})
	require.NoError(t, err)

	res, err := f.Inventory.Reconcile(f.Ctx, count.ID)
	require.NoError(t, err)

	require.NotNil(t, res.Surplus)
	require.Len(t, res.Surplus.Lines, 1)
	apptest.AssertQty(t, "2", res.Surplus.Lines[0].Quantity)
	apptest.AssertQty(t, "2", res.Surplus.Lines[0].UnitPrice)
	assert.Equal(t, &count.ID, res.Surplus.ReferenceID)

	require.NotNil(t, res.Shortage)
	require.Len(t, res.Shortage.Lines, 1)
	apptest.AssertQty(t, "1.5", res.Shortage.Lines[0].Quantity)
	assert.Equal(t, &count.ID, res.Shortage.ReferenceID)

	apptest.AssertQty(t, "12", f.Balance(wh, flour))
	apptest.AssertQty(t, "3.5", f.Balance(wh, sugar))
	apptest.AssertQty(t, "2", f.Cost(flour), "surplus priced at current cost")
	assert.True(t, res.Count.Processed)

	corrections, err := f.Repos.Documents.ListByReference(f.Ctx, count.ID)
	require.NoError(t, err)
	assert.Len(t, corrections, 2)
}

func TestReconcileNoDifference(t *testing.T) {
	f := apptest.New(t)
	wh := f.Warehouse("Main")
	flour := f.Ingredient("Flour", "0")
	f.Supply(wh, flour, "10", "2")

	count, err := f.Inventory.PrepareCount(f.Ctx, wh.ID, "")
	require.NoError(t, err)

	res, err := f.Inventory.Reconcile(f.Ctx, count.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Surplus)
	assert.Nil(t, res.Shortage)
	assert.True(t, res.Count.Processed)

	corrections, err := f.Repos.Documents.ListByReference(f.Ctx, count.ID)
	require.NoError(t, err)
	assert.Empty(t, corrections)
}

func TestReconcileTwice(t *testing.T) {
	f := apptest.New(t)
	wh := f.Warehouse("Main")

	count, err := f.Inventory.PrepareCount(f.Ctx, wh.ID, "")
	require.NoError(t, err)
	_, err = f.Inventory.Reconcile(f.Ctx, count.ID)
	require.NoError(t, err)

	_, err = f.Inventory.Reconcile(f.Ctx, count.ID)
	assert.True(t, apperror.Is(err, apperror.CodeAlreadyProcessed), "got %v", err)
}

func TestRecordCountsRejectsDuplicates(t *testing.T) {
	f := apptest.New(t)
	wh := f.Warehouse("Main")
	flour := f.Ingredient("Flour", "1")
	f.Supply(wh, flour, "4", "1")

	count, err := f.Inventory.PrepareCount(f.Ctx, wh.ID, "")
	require.NoError(t, err)
	_, err = f.Inventory.RecordCounts(f.Ctx, count.ID, []inventory.CountLine{
		{IngredientID: flour.ID, Counted: types.MustQuantity("1")},
		{IngredientID: flour.ID, Counted: types.MustQuantity("2")},
	})
	assert.True(t, apperror.Is(err, apperror.CodeValidation), "got %v", err)

	stored, err := f.Documents.GetByID(f.Ctx, count.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1, "book quantities kept")
	apptest.AssertQty(t, "4", stored.Lines[0].Quantity)
}

func TestReconcileRejectsDuplicates(t *testing.T) {
	f := apptest.New(t)
	wh := f.Warehouse("Main")
	flour := f.Ingredient("Flour", "1")

	count := movement.NewDocument(movement.DocTypeInventory)
	count.SourceWarehouseID = &wh.ID
	count.AddLine(flour.ID, types.MustQuantity("1"), types.Zero())
	count.AddLine(flour.ID, types.MustQuantity("2"), types.Zero())
	require.NoError(t, f.Documents.Create(f.Ctx, count))

	_, err := f.Inventory.Reconcile(f.Ctx, count.ID)
	assert.True(t, apperror.Is(err, apperror.CodeValidation), "got %v", err)
	apptest.AssertQty(t, "0", f.Balance(wh, flour))
}

func TestReconcileNegativeBook(t *testing.T) {
	f := apptest.New(t)
	wh := f.Warehouse("Main")
	oil := f.Ingredient("Oil", "5")
	f.Supply(wh, oil, "1", "5")

	_, err := f.Documents.ProcessMovement(f.Ctx, movement.Request{
		Type:              movement.DocTypeWriteOff,
		SourceWarehouseID: &wh.ID,
		Lines:             []movement.LineInput{{IngredientID: oil.ID, Quantity: types.MustQuantity("3")}},
	})
	require.NoError(t, err)
	apptest.AssertQty(t, "-2", f.Balance(wh, oil))

	count, err := f.Inventory.PrepareCount(f.Ctx, wh.ID, "")
	require.NoError(t, err)
	require.Len(t, count.Lines, 1)
	apptest.AssertQty(t, "0", count.Lines[0].Quantity, "book quantity is clamped on the sheet")

	res, err := f.Inventory.Reconcile(f.Ctx, count.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Surplus)
	assert.Nil(t, res.Shortage)
	apptest.AssertQty(t, "2", res.Surplus.Lines[0].Quantity)
	apptest.AssertQty(t, "0", f.Balance(wh, oil))
}
