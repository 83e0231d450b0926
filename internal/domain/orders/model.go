// Package orders models the sales orders the ledger consumes.
// Orders are owned upstream; the ledger only reads lines and flips its own flags.
package orders

import (
	"time"

	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusNew        Status = "new"
	StatusAccepted   Status = "accepted"
	StatusCooking    Status = "cooking"
	StatusDelivering Status = "delivering"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Channel is the fulfillment channel.
type Channel string

const (
	ChannelDelivery Channel = "delivery"
	ChannelPickup   Channel = "pickup"
	ChannelInHouse  Channel = "in_house"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelDelivery, ChannelPickup, ChannelInHouse:
		return true
	}
	return false
}

// IsTakeaway reports whether packaging-only components apply.
func (c Channel) IsTakeaway() bool {
	return c == ChannelDelivery || c == ChannelPickup
}

// PaymentMethod of an order.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Order is a customer order as seen by the ledger.
type Order struct {
	entity.BaseEntity

	Number        string        `db:"number" json:"number"`
	Status        Status        `db:"status" json:"status"`
	Channel       Channel       `db:"channel" json:"channel"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	Total         types.Money   `db:"total" json:"total"`

	// IsInventoryDeducted is set once all deduction documents are processed.
	IsInventoryDeducted bool `db:"is_inventory_deducted" json:"isInventoryDeducted"`

	// StockWrittenOff marks a cancelled order whose stock was wasted, not restocked.
	StockWrittenOff bool `db:"stock_written_off" json:"stockWrittenOff"`

	ShiftID *id.ID `db:"shift_id" json:"shiftId,omitempty"`

	// CashTurnedIn is false while a courier or waiter still holds the cash.
	CashTurnedIn bool `db:"cash_turned_in" json:"cashTurnedIn"`

	CourierID     *id.ID `db:"courier_id" json:"courierId,omitempty"`
	AcceptedByID  *id.ID `db:"accepted_by_id" json:"acceptedById,omitempty"`
	CompletedByID *id.ID `db:"completed_by_id" json:"completedById,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// NewOrder creates an order in the new state.
func NewOrder(channel Channel, payment PaymentMethod) *Order {
	return &Order{
		BaseEntity:    entity.NewBaseEntity(),
		Status:        StatusNew,
		Channel:       channel,
		PaymentMethod: payment,
		Total:         types.Zero(),
		CashTurnedIn:  true,
		CreatedAt:     time.Now().UTC(),
	}
}

// IsCash reports whether the order was paid in cash.
func (o *Order) IsCash() bool {
	return o.PaymentMethod == PaymentCash
}

// HasOutstandingCash reports whether a staff member still owes this order's cash.
func (o *Order) HasOutstandingCash() bool {
	return o.IsCash() && !o.CashTurnedIn
}

// ResponsibleEmployee picks who holds the cash: the courier, then the
// accepting waiter, then whoever completed the order.
func (o *Order) ResponsibleEmployee() *id.ID {
	for _, candidate := range []*id.ID{o.CourierID, o.AcceptedByID, o.CompletedByID} {
		if candidate != nil {
			return candidate
		}
	}
	return nil
}

// AddLine appends a line and returns it for further setup.
func (o *Order) AddLine(productID id.ID, quantity types.Quantity, price types.Money) *Line {
	o.Lines = append(o.Lines, Line{
		ID:        id.New(),
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	})
	o.Total = o.Total.Add(price.Mul(quantity))
	return &o.Lines[len(o.Lines)-1]
}

// Line is one sold menu item.
type Line struct {
	ID        id.ID          `db:"id" json:"id"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Price     types.Money    `db:"price" json:"price"`
	AddOns    []AddOn        `db:"-" json:"addOns,omitempty"`
}

// AddOn is a paid modifier chosen for a line, with the modifier's
// ingredient data snapshotted at sale time.
type AddOn struct {
	ModifierID id.ID       `db:"modifier_id" json:"modifierId"`
	Name       string      `db:"name" json:"name"`
	Price      types.Money `db:"price" json:"price"`

	IngredientID *id.ID          `db:"ingredient_id" json:"ingredientId,omitempty"`
	Quantity     *types.Quantity `db:"quantity" json:"quantity,omitempty"`
	WarehouseID  *id.ID          `db:"warehouse_id" json:"warehouseId,omitempty"`
}

// Snapshot is the resolved ingredient data of an add-on.
type Snapshot struct {
	IngredientID id.ID
	Quantity     types.Quantity
	WarehouseID  *id.ID
}

// CompleteSnapshot returns the snapshot when it names an ingredient and a
// quantity. Otherwise the caller must fall back to the live modifier.
func (a AddOn) CompleteSnapshot() (Snapshot, bool) {
	if a.IngredientID == nil || a.Quantity == nil {
		return Snapshot{}, false
	}
	return Snapshot{
		IngredientID: *a.IngredientID,
		Quantity:     *a.Quantity,
		WarehouseID:  a.WarehouseID,
	}, true
}
