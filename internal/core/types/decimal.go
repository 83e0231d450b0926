// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// CostPrecision is the number of fractional digits kept on unit costs.
const CostPrecision int32 = 6

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a signed stock quantity. Balances may go negative.
type Quantity = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MustQuantity is MustMoney for quantities.
func MustQuantity(s string) Quantity {
	return MustMoney(s)
}

// NewQuantity creates a whole-unit quantity.
func NewQuantity(v int64) Quantity {
	return decimal.NewFromInt(v)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// ClampNonNegative returns d, or zero when d is negative.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// RoundCost rounds a unit cost to CostPrecision digits.
func RoundCost(d Money) Money {
	return d.Round(CostPrecision)
}

// Sum adds up all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
