// Package movement implements typed stock movement documents and the
// processor that applies them to the stock register exactly once.
package movement

import (
	"context"
	"fmt"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

// DocType is the kind of movement document.
type DocType string

const (
	DocTypeSupply    DocType = "supply"
	DocTypeWriteOff  DocType = "writeoff"
	DocTypeTransfer  DocType = "transfer"
	DocTypeReturn    DocType = "return"
	DocTypeDeduction DocType = "deduction"
	DocTypeInventory DocType = "inventory"
)

var numberPrefixes = map[DocType]string{
	DocTypeSupply:    "SUP",
	DocTypeWriteOff:  "WO",
	DocTypeTransfer:  "TR",
	DocTypeReturn:    "RET",
	DocTypeDeduction: "DED",
	DocTypeInventory: "INV",
}

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	_, ok := numberPrefixes[t]
	return ok
}

// NumberPrefix returns the numbering prefix for the type.
func (t DocType) NumberPrefix() string {
	return numberPrefixes[t]
}

// NeedsSource reports whether the type draws stock from a source warehouse.
func (t DocType) NeedsSource() bool {
	switch t {
	case DocTypeTransfer, DocTypeWriteOff, DocTypeDeduction, DocTypeInventory:
		return true
	}
	return false
}

// NeedsTarget reports whether the type puts stock into a target warehouse.
func (t DocType) NeedsTarget() bool {
	switch t {
	case DocTypeSupply, DocTypeReturn, DocTypeTransfer:
		return true
	}
	return false
}

// Line is one ingredient row of a document.
// For inventory counts Quantity holds the counted quantity.
type Line struct {
	LineID       id.ID          `db:"line_id" json:"lineId"`
	LineNo       int            `db:"line_no" json:"lineNo"`
	IngredientID id.ID          `db:"ingredient_id" json:"ingredientId"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice    types.Money    `db:"unit_price" json:"unitPrice"`
}

// Amount returns Quantity x UnitPrice.
func (l Line) Amount() types.Money {
	return l.Quantity.Mul(l.UnitPrice)
}

// Document is a typed, one-shot stock movement.
type Document struct {
	entity.Document

	Type DocType `db:"doc_type" json:"docType"`

	SourceWarehouseID *id.ID `db:"source_warehouse_id" json:"sourceWarehouseId,omitempty"`
	TargetWarehouseID *id.ID `db:"target_warehouse_id" json:"targetWarehouseId,omitempty"`

	// CounterpartyID is the supplier of a supply document.
	CounterpartyID *id.ID `db:"counterparty_id" json:"counterpartyId,omitempty"`

	// OrderID links deduction and return documents to their order.
	OrderID *id.ID `db:"order_id" json:"orderId,omitempty"`

	// ReferenceID links reconciliation corrections to their count document.
	ReferenceID *id.ID `db:"reference_id" json:"referenceId,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// NewDocument creates an unprocessed document of the given type.
func NewDocument(docType DocType) *Document {
	return &Document{
		Document: entity.NewDocument(),
		Type:     docType,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends a line with the next line number.
func (d *Document) AddLine(ingredientID id.ID, quantity types.Quantity, unitPrice types.Money) {
	d.Lines = append(d.Lines, Line{
		LineID:       id.New(),
		LineNo:       len(d.Lines) + 1,
		IngredientID: ingredientID,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
	})
}

// TotalAmount sums line amounts.
func (d *Document) TotalAmount() types.Money {
	total := types.Zero()
	for _, l := range d.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// Validate checks the header and lines. Warehouse requirements are checked
// at processing time so empty drafts can still be committed.
func (d *Document) Validate(_ context.Context) error {
	if !d.Type.Valid() {
		return apperror.NewValidation("unknown document type").
			WithDetail("field", "docType").
			WithDetail("value", string(d.Type))
	}

	for i, line := range d.Lines {
		if id.IsNil(line.IngredientID) {
			return apperror.NewValidation(fmt.Sprintf("line %d: ingredient is required", i+1)).
				WithDetail("field", fmt.Sprintf("lines[%d].ingredientId", i))
		}
		if d.Type == DocTypeInventory {
			if line.Quantity.IsNegative() {
				return apperror.NewInvalidQuantity(line.Quantity.String()).WithDetail("line", i+1)
			}
		} else if !line.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity(line.Quantity.String()).WithDetail("line", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("line %d: price cannot be negative", i+1)).
				WithDetail("field", fmt.Sprintf("lines[%d].unitPrice", i))
		}
	}
	return nil
}

// RequireWarehouses returns MISSING_WAREHOUSE when the type's source or
// target warehouse is absent.
func (d *Document) RequireWarehouses() error {
	if d.Type.NeedsSource() && d.SourceWarehouseID == nil {
		return apperror.NewMissingWarehouse(string(d.Type), "source")
	}
	if d.Type.NeedsTarget() && d.TargetWarehouseID == nil {
		return apperror.NewMissingWarehouse(string(d.Type), "target")
	}
	return nil
}
