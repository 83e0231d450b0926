// Package deduction turns orders into stock deductions and returns.
package deduction

import (
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

// Source tells where a deduction line came from.
type Source string

const (
	SourceTechCard Source = "tech_card"
	SourceAddOn    Source = "add_on"
	SourceRule     Source = "auto_rule"
)

// Deduction is one resolved (storage warehouse, ingredient, quantity) triple
// priced at the ingredient's current cost.
type Deduction struct {
	WarehouseID  id.ID          `json:"warehouseId"`
	IngredientID id.ID          `json:"ingredientId"`
	Quantity     types.Quantity `json:"quantity"`
	UnitPrice    types.Money    `json:"unitPrice"`
	Source       Source         `json:"source"`
}

// Cost returns Quantity x UnitPrice.
func (d Deduction) Cost() types.Money {
	return d.Quantity.Mul(d.UnitPrice)
}

// Group holds the deductions routed to one storage warehouse.
type Group struct {
	WarehouseID id.ID       `json:"warehouseId"`
	Lines       []Deduction `json:"lines"`
}

// Plan is an order's deductions grouped by storage warehouse, in order of
// first appearance. Lines for the same ingredient in a group are merged.
type Plan struct {
	Groups []Group `json:"groups"`

	index map[id.ID]int
}

// Add routes d into its warehouse group.
func (p *Plan) Add(d Deduction) {
	if !d.Quantity.IsPositive() {
		return
	}
	if p.index == nil {
		p.index = make(map[id.ID]int)
	}

	gi, ok := p.index[d.WarehouseID]
	if !ok {
		p.Groups = append(p.Groups, Group{WarehouseID: d.WarehouseID})
		gi = len(p.Groups) - 1
		p.index[d.WarehouseID] = gi
	}

	g := &p.Groups[gi]
	for i := range g.Lines {
		if g.Lines[i].IngredientID == d.IngredientID {
			g.Lines[i].Quantity = g.Lines[i].Quantity.Add(d.Quantity)
			return
		}
	}
	g.Lines = append(g.Lines, d)
}

// IsEmpty reports whether the plan deducts nothing.
func (p *Plan) IsEmpty() bool {
	for _, g := range p.Groups {
		if len(g.Lines) > 0 {
			return false
		}
	}
	return true
}

// TotalCost sums the cost of every line.
func (p *Plan) TotalCost() types.Money {
	total := types.Zero()
	for _, g := range p.Groups {
		for _, l := range g.Lines {
			total = total.Add(l.Cost())
		}
	}
	return total
}
