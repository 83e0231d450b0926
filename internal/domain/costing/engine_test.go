package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"restoledger/internal/core/types"
)

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		oldCost  string
		qty      string
		price    string
		want     string
		ok       bool
	}{
		{"empty stock takes supply price", "0", "10", "5", "20", "20", true},
		{"blends with existing stock", "5", "20", "5", "10", "15", true},
		{"negative stock counts as zero", "-3", "10", "2", "7", "7", true},
		{"fractional result is rounded", "1", "1", "2", "1.5", "1.333333", true},
		{"non positive denominator keeps cost", "0", "12", "0", "30", "12", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WeightedAverage(
				types.MustQuantity(tt.existing),
				types.MustMoney(tt.oldCost),
				types.MustQuantity(tt.qty),
				types.MustMoney(tt.price),
			)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, got.Equal(types.MustMoney(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestWeightedAverage_Sequence(t *testing.T) {
	// Two priced supplies with a writeoff between them: the writeoff lowers
	// stock but never touches cost.
	cost := types.MustMoney("10")
	stock := types.Zero()

	cost, _ = WeightedAverage(stock, cost, types.NewQuantity(5), types.MustMoney("20"))
	stock = stock.Add(types.NewQuantity(5))
	assert.Equal(t, "20", cost.String())

	stock = stock.Sub(types.NewQuantity(2))

	cost, _ = WeightedAverage(stock, cost, types.NewQuantity(3), types.MustMoney("30"))
	assert.Equal(t, "25", cost.String())
}
