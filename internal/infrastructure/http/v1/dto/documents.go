package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"restoledger/internal/domain/documents/movement"
)

// DocumentLine is one line of a movement document request.
type DocumentLine struct {
	IngredientID string          `json:"ingredientId" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

// CreateDocumentRequest creates and applies a movement document.
type CreateDocumentRequest struct {
	Type              string         `json:"docType" binding:"required"`
	SourceWarehouseID string         `json:"sourceWarehouseId"`
	TargetWarehouseID string         `json:"targetWarehouseId"`
	CounterpartyID    string         `json:"counterpartyId"`
	Comment           string         `json:"comment"`
	Lines             []DocumentLine `json:"lines"`
}

// ToRequest maps the body to a processor request.
func (r CreateDocumentRequest) ToRequest() (movement.Request, error) {
	var (
		req = movement.Request{Type: movement.DocType(r.Type), Comment: r.Comment}
		err error
	)
	if req.SourceWarehouseID, err = ParseOptionalID("sourceWarehouseId", r.SourceWarehouseID); err != nil {
		return req, err
	}
	if req.TargetWarehouseID, err = ParseOptionalID("targetWarehouseId", r.TargetWarehouseID); err != nil {
		return req, err
	}
	if req.CounterpartyID, err = ParseOptionalID("counterpartyId", r.CounterpartyID); err != nil {
		return req, err
	}
	for i, l := range r.Lines {
		ingredientID, err := ParseID(fmt.Sprintf("lines[%d].ingredientId", i), l.IngredientID)
		if err != nil {
			return req, err
		}
		req.Lines = append(req.Lines, movement.LineInput{
			IngredientID: ingredientID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
		})
	}
	return req, nil
}

// ProduceRequest runs a production batch.
type ProduceRequest struct {
	IngredientID string          `json:"ingredientId" binding:"required"`
	WarehouseID  string          `json:"warehouseId" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// PrepareCountRequest opens a count sheet.
type PrepareCountRequest struct {
	WarehouseID string `json:"warehouseId" binding:"required"`
	Comment     string `json:"comment"`
}

// CountLine is a counted quantity.
type CountLine struct {
	IngredientID string          `json:"ingredientId" binding:"required"`
	Counted      decimal.Decimal `json:"counted"`
}

// RecordCountsRequest fills a count sheet.
type RecordCountsRequest struct {
	Lines []CountLine `json:"lines" binding:"required"`
}
