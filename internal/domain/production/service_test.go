package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/app/apptest"
	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/documents/movement"
)

func TestProduce(t *testing.T) {
	f := apptest.New(t)
	kitchen := f.Warehouse("Kitchen")
	flour := f.Ingredient("Flour", "0")
	f.Supply(kitchen, flour, "50", "3")
	dough := f.SemiFinished("Dough", apptest.Child(flour, "2"))

	res, err := f.Production.Produce(f.Ctx, dough.ID, types.MustQuantity("10"), kitchen.ID)
	require.NoError(t, err)

	apptest.AssertQty(t, "60", res.TotalBatchCost)
	apptest.AssertQty(t, "6", res.UnitCost)
	assert.Equal(t, movement.DocTypeWriteOff, res.WriteOff.Type)
	assert.Equal(t, movement.DocTypeSupply, res.Supply.Type)
	assert.Equal(t, &res.WriteOff.ID, res.Supply.ReferenceID)

	apptest.AssertQty(t, "30", f.Balance(kitchen, flour))
	apptest.AssertQty(t, "10", f.Balance(kitchen, dough))
	apptest.AssertQty(t, "6", f.Cost(dough))
	apptest.AssertQty(t, "3", f.Cost(flour), "writeoff keeps component cost")
}

func TestProduceBlendsExistingStock(t *testing.T) {
	f := apptest.New(t)
	kitchen := f.Warehouse("Kitchen")
	flour := f.Ingredient("Flour", "0")
	f.Supply(kitchen, flour, "100", "3")
	dough := f.SemiFinished("Dough", apptest.Child(flour, "2"))
	f.Supply(kitchen, dough, "10", "10")

	_, err := f.Production.Produce(f.Ctx, dough.ID, types.MustQuantity("10"), kitchen.ID)
	require.NoError(t, err)

	apptest.AssertQty(t, "8", f.Cost(dough), "(10x10 + 10x6) / 20")
	apptest.AssertQty(t, "20", f.Balance(kitchen, dough))
}

func TestProduceMultipleComponents(t *testing.T) {
	f := apptest.New(t)
	kitchen := f.Warehouse("Kitchen")
	tomato := f.Ingredient("Tomato", "4")
	garlic := f.Ingredient("Garlic", "10")
	sauce := f.SemiFinished("Sauce", apptest.Child(tomato, "1.5"), apptest.Child(garlic, "0.1"))

	res, err := f.Production.Produce(f.Ctx, sauce.ID, types.MustQuantity("4"), kitchen.ID)
	require.NoError(t, err)

	apptest.AssertQty(t, "28", res.TotalBatchCost, "4x1.5x4 + 4x0.1x10")
	apptest.AssertQty(t, "7", res.UnitCost)
	apptest.AssertQty(t, "-6", f.Balance(kitchen, tomato), "production may drive stock negative")
	assert.Len(t, res.WriteOff.Lines, 2)
}

func TestProduceErrors(t *testing.T) {
	f := apptest.New(t)
	kitchen := f.Warehouse("Kitchen")
	flour := f.Ingredient("Flour", "1")
	empty := f.SemiFinished("Empty")
	dough := f.SemiFinished("Dough", apptest.Child(flour, "1"))

	tests := []struct {
		name string
		ing  id.ID
		qty  string
		code string
	}{
		{"raw ingredient", flour.ID, "1", apperror.CodeNotManufacturable},
		{"no recipe", empty.ID, "1", apperror.CodeNotManufacturable},
		{"zero quantity", dough.ID, "0", apperror.CodeInvalidQuantity},
		{"negative quantity", dough.ID, "-2", apperror.CodeInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Production.Produce(f.Ctx, tt.ing, types.MustQuantity(tt.qty), kitchen.ID)
			assert.True(t, apperror.Is(err, tt.code), "got %v", err)
		})
	}
	apptest.AssertQty(t, "0", f.Balance(kitchen, flour))
}
