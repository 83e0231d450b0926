package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/orders"
)

func TestTechCardItem_AppliesTo(t *testing.T) {
	box := TechCardItem{IsTakeaway: true}
	dough := TechCardItem{}

	assert.True(t, box.AppliesTo(orders.ChannelDelivery))
	assert.True(t, box.AppliesTo(orders.ChannelPickup))
	assert.False(t, box.AppliesTo(orders.ChannelInHouse))
	assert.True(t, dough.AppliesTo(orders.ChannelInHouse))
}

func TestAutoDeductionRule_Matches(t *testing.T) {
	tests := []struct {
		trigger Trigger
		active  bool
		channel orders.Channel
		want    bool
	}{
		{TriggerAll, true, orders.ChannelInHouse, true},
		{TriggerDelivery, true, orders.ChannelDelivery, true},
		{TriggerDelivery, true, orders.ChannelPickup, false},
		{TriggerPickup, false, orders.ChannelPickup, false},
	}
	for _, tt := range tests {
		r := &AutoDeductionRule{Trigger: tt.trigger, IsActive: tt.active}
		assert.Equal(t, tt.want, r.Matches(tt.channel), "%s/%s", tt.trigger, tt.channel)
	}
}

func TestModifier_Snapshot(t *testing.T) {
	ing := id.New()
	qty := types.MustQuantity("0.05")
	m := NewModifier("extra cheese", types.MustMoney("1.50"))
	m.IngredientID = &ing
	m.Quantity = &qty

	addOn := m.Snapshot()
	snap, ok := addOn.CompleteSnapshot()
	assert.True(t, ok)
	assert.Equal(t, ing, snap.IngredientID)
	assert.True(t, snap.Quantity.Equal(qty))
	assert.Nil(t, snap.WarehouseID)
	assert.True(t, m.Consumes())

	_, ok = NewModifier("no onions", types.Zero()).Snapshot().CompleteSnapshot()
	assert.False(t, ok)
}
