package deduction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

func TestPlanGroupsAndMerges(t *testing.T) {
	whA, whB := id.New(), id.New()
	flour, salt := id.New(), id.New()

	var p Plan
	p.Add(Deduction{WarehouseID: whB, IngredientID: salt, Quantity: types.MustQuantity("1"), UnitPrice: types.MustMoney("2")})
	p.Add(Deduction{WarehouseID: whA, IngredientID: flour, Quantity: types.MustQuantity("2"), UnitPrice: types.MustMoney("3")})
	p.Add(Deduction{WarehouseID: whB, IngredientID: salt, Quantity: types.MustQuantity("0.5"), UnitPrice: types.MustMoney("2")})
	p.Add(Deduction{WarehouseID: whA, IngredientID: salt, Quantity: types.Zero()})

	require.Len(t, p.Groups, 2)
	assert.Equal(t, whB, p.Groups[0].WarehouseID, "first appearance order")
	require.Len(t, p.Groups[0].Lines, 1)
	assert.True(t, types.MustQuantity("1.5").Equal(p.Groups[0].Lines[0].Quantity))
	assert.Len(t, p.Groups[1].Lines, 1, "zero quantities are dropped")
	assert.True(t, types.MustMoney("9").Equal(p.TotalCost()))
	assert.False(t, p.IsEmpty())
}

func TestEmptyPlan(t *testing.T) {
	var p Plan
	assert.True(t, p.IsEmpty())
	assert.True(t, p.TotalCost().IsZero())
}
