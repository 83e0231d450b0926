// Package recipe holds the bills of materials the resolver reads: product
// tech cards, semi-finished sub-recipes, add-on modifiers and per-order
// auto-deduction rules.
package recipe

import (
	"context"
	"strings"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/orders"
)

// Product is a menu item with an optional production warehouse.
type Product struct {
	entity.BaseEntity

	Name                  string `db:"name" json:"name"`
	ProductionWarehouseID *id.ID `db:"production_warehouse_id" json:"productionWarehouseId,omitempty"`
}

// NewProduct creates a product.
func NewProduct(name string, productionWarehouse *id.ID) *Product {
	return &Product{
		BaseEntity:            entity.NewBaseEntity(),
		Name:                  name,
		ProductionWarehouseID: productionWarehouse,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(_ context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}

// TechCardItem is one component of a product's recipe.
type TechCardItem struct {
	ProductID    id.ID          `db:"product_id" json:"productId"`
	LineNo       int            `db:"line_no" json:"lineNo"`
	IngredientID id.ID          `db:"ingredient_id" json:"ingredientId"`
	GrossQty     types.Quantity `db:"gross_qty" json:"grossQty"`
	NetQty       types.Quantity `db:"net_qty" json:"netQty"`

	// IsTakeaway components (boxes, bags) apply to delivery and pickup only.
	IsTakeaway bool `db:"is_takeaway" json:"isTakeaway"`
}

// AppliesTo reports whether the component is consumed for the channel.
func (t TechCardItem) AppliesTo(ch orders.Channel) bool {
	return !t.IsTakeaway || ch.IsTakeaway()
}

// SemiFinishedItem is one child of a semi-finished ingredient's recipe.
type SemiFinishedItem struct {
	SemiFinishedID id.ID          `db:"semi_finished_id" json:"semiFinishedId"`
	LineNo         int            `db:"line_no" json:"lineNo"`
	IngredientID   id.ID          `db:"ingredient_id" json:"ingredientId"`
	GrossQty       types.Quantity `db:"gross_qty" json:"grossQty"`
}

// Modifier is a paid add-on definition.
type Modifier struct {
	entity.BaseEntity

	Name         string          `db:"name" json:"name"`
	Price        types.Money     `db:"price" json:"price"`
	IngredientID *id.ID          `db:"ingredient_id" json:"ingredientId,omitempty"`
	Quantity     *types.Quantity `db:"quantity" json:"quantity,omitempty"`
	WarehouseID  *id.ID          `db:"warehouse_id" json:"warehouseId,omitempty"`
}

// NewModifier creates a modifier.
func NewModifier(name string, price types.Money) *Modifier {
	return &Modifier{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		Price:      price,
	}
}

// Consumes reports whether the modifier deducts stock.
func (m *Modifier) Consumes() bool {
	return m.IngredientID != nil && m.Quantity != nil && m.Quantity.IsPositive()
}

// Snapshot copies the stock-relevant fields onto an order add-on.
func (m *Modifier) Snapshot() orders.AddOn {
	return orders.AddOn{
		ModifierID:   m.ID,
		Name:         m.Name,
		Price:        m.Price,
		IngredientID: m.IngredientID,
		Quantity:     m.Quantity,
		WarehouseID:  m.WarehouseID,
	}
}

// Trigger selects which orders an auto-deduction rule fires for.
type Trigger string

const (
	TriggerDelivery Trigger = Trigger(orders.ChannelDelivery)
	TriggerPickup   Trigger = Trigger(orders.ChannelPickup)
	TriggerInHouse  Trigger = Trigger(orders.ChannelInHouse)
	TriggerAll      Trigger = "all"
)

// AutoDeductionRule is a flat per-order consumption, such as one bag per
// delivery order regardless of how many items it holds.
type AutoDeductionRule struct {
	entity.BaseEntity

	Name         string         `db:"name" json:"name"`
	Trigger      Trigger        `db:"trigger" json:"trigger"`
	IngredientID id.ID          `db:"ingredient_id" json:"ingredientId"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	WarehouseID  id.ID          `db:"warehouse_id" json:"warehouseId"`
	IsActive     bool           `db:"is_active" json:"isActive"`
}

// Matches reports whether the rule fires for the channel.
func (r *AutoDeductionRule) Matches(ch orders.Channel) bool {
	return r.IsActive && (r.Trigger == TriggerAll || r.Trigger == Trigger(ch))
}
