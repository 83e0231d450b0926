package movement

import (
	"context"
	"fmt"
	"time"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/numerator"
	"restoledger/internal/core/tx"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/audit"
	"restoledger/internal/domain/events"
	"restoledger/pkg/logger"
)

// StockLedger is the slice of the stock register the processor mutates.
type StockLedger interface {
	Adjust(ctx context.Context, warehouseID, ingredientID id.ID, delta types.Quantity) (*entity.StockBalance, error)
	RecordMovements(ctx context.Context, movements []entity.StockMovement) error
}

// CostUpdater blends priced supplies into ingredient costs.
type CostUpdater interface {
	ApplySupplyCost(ctx context.Context, ingredientID id.ID, qty types.Quantity, price types.Money) (types.Money, error)
}

// Processor applies movement documents atomically and at most once.
type Processor struct {
	repo      Repository
	stock     StockLedger
	costs     CostUpdater
	numerator numerator.Generator
	events    events.Publisher
	txManager tx.Manager
}

// NewProcessor creates a document processor.
func NewProcessor(
	repo Repository,
	stock StockLedger,
	costs CostUpdater,
	numerator numerator.Generator,
	publisher events.Publisher,
	txManager tx.Manager,
) *Processor {
	return &Processor{
		repo:      repo,
		stock:     stock,
		costs:     costs,
		numerator: numerator,
		events:    events.OrNop(publisher),
		txManager: txManager,
	}
}

// LineInput is a line of a ProcessMovement request.
type LineInput struct {
	IngredientID id.ID
	Quantity     types.Quantity
	UnitPrice    types.Money
}

// Request describes a document to create and apply in one step.
type Request struct {
	Type              DocType
	Lines             []LineInput
	SourceWarehouseID *id.ID
	TargetWarehouseID *id.ID
	CounterpartyID    *id.ID
	Comment           string
	OrderID           *id.ID
	ReferenceID       *id.ID
}

// Create validates, numbers and stores an unprocessed document.
func (p *Processor) Create(ctx context.Context, doc *Document) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := p.numerator.GetNextNumber(ctx, numerator.DefaultConfig(doc.Type.NumberPrefix()), nil, doc.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}
	audit.EnrichCreatedBy(ctx, &doc.BaseDocument)

	if err := p.repo.Create(ctx, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// ProcessMovement builds a document from req, stores it and applies it in
// a single transaction. Higher-level components use this instead of
// hand-building documents.
func (p *Processor) ProcessMovement(ctx context.Context, req Request) (*Document, error) {
	if req.Type == DocTypeInventory {
		return nil, apperror.NewValidation("inventory counts are applied by reconciliation")
	}

	doc := NewDocument(req.Type)
	doc.SourceWarehouseID = req.SourceWarehouseID
	doc.TargetWarehouseID = req.TargetWarehouseID
	doc.CounterpartyID = req.CounterpartyID
	doc.OrderID = req.OrderID
	doc.ReferenceID = req.ReferenceID
	doc.Comment = req.Comment
	for _, l := range req.Lines {
		doc.AddLine(l.IngredientID, l.Quantity, l.UnitPrice)
	}

	err := p.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := p.Create(ctx, doc); err != nil {
			return err
		}
		return p.apply(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Apply processes a stored document.
// A second call fails with ALREADY_PROCESSED and changes nothing.
func (p *Processor) Apply(ctx context.Context, docID id.ID) (*Document, error) {
	var doc *Document
	err := p.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := p.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if d.Type == DocTypeInventory {
			return apperror.NewValidation("inventory counts are applied by reconciliation").
				WithDetail("document_id", docID.String())
		}
		if err := p.apply(ctx, d); err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// apply mutates balances and costs for every line, then flips the processed
// flag. It must run inside a transaction.
func (p *Processor) apply(ctx context.Context, doc *Document) error {
	if err := doc.EnsureNotProcessed(); err != nil {
		return err
	}

	if len(doc.Lines) == 0 {
		logger.Info(ctx, "empty document committed as no-op",
			"document_id", doc.ID, "number", doc.Number, "doc_type", doc.Type)
		return p.Complete(ctx, doc)
	}

	if err := doc.RequireWarehouses(); err != nil {
		return err
	}

	movements := make([]entity.StockMovement, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		lineMovements, err := p.applyLine(ctx, doc, line)
		if err != nil {
			return fmt.Errorf("line %d: %w", line.LineNo, err)
		}
		movements = append(movements, lineMovements...)
	}

	if err := p.stock.RecordMovements(ctx, movements); err != nil {
		return err
	}
	return p.Complete(ctx, doc)
}

func (p *Processor) applyLine(ctx context.Context, doc *Document, line Line) ([]entity.StockMovement, error) {
	receipt := func(warehouseID id.ID) (entity.StockMovement, error) {
		if _, err := p.stock.Adjust(ctx, warehouseID, line.IngredientID, line.Quantity); err != nil {
			return entity.StockMovement{}, err
		}
		return p.movement(doc, line, entity.RecordTypeReceipt, warehouseID), nil
	}
	expense := func(warehouseID id.ID) (entity.StockMovement, error) {
		if _, err := p.stock.Adjust(ctx, warehouseID, line.IngredientID, line.Quantity.Neg()); err != nil {
			return entity.StockMovement{}, err
		}
		return p.movement(doc, line, entity.RecordTypeExpense, warehouseID), nil
	}

	switch doc.Type {
	case DocTypeSupply:
		// Cost first: the weighted average must see stock before this receipt.
		if line.UnitPrice.IsPositive() {
			if _, err := p.costs.ApplySupplyCost(ctx, line.IngredientID, line.Quantity, line.UnitPrice); err != nil {
				return nil, err
			}
		}
		m, err := receipt(*doc.TargetWarehouseID)
		return []entity.StockMovement{m}, err

	case DocTypeReturn:
		m, err := receipt(*doc.TargetWarehouseID)
		return []entity.StockMovement{m}, err

	case DocTypeTransfer:
		out, err := expense(*doc.SourceWarehouseID)
		if err != nil {
			return nil, err
		}
		in, err := receipt(*doc.TargetWarehouseID)
		return []entity.StockMovement{out, in}, err

	case DocTypeWriteOff, DocTypeDeduction:
		m, err := expense(*doc.SourceWarehouseID)
		return []entity.StockMovement{m}, err
	}

	return nil, apperror.NewValidation("document type cannot be applied").
		WithDetail("doc_type", string(doc.Type))
}

func (p *Processor) movement(doc *Document, line Line, recordType entity.RecordType, warehouseID id.ID) entity.StockMovement {
	return entity.NewStockMovement(
		doc.ID, string(doc.Type), doc.Date, recordType,
		warehouseID, line.IngredientID, line.Quantity, line.UnitPrice,
	)
}

// Complete flips the processed flag and records the event in the same
// transaction. Reconciliation uses it directly for count documents, whose
// effect is carried by the correction documents.
func (p *Processor) Complete(ctx context.Context, doc *Document) error {
	doc.MarkProcessed()
	if err := p.repo.MarkProcessed(ctx, doc); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	err := p.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateDocument,
		AggregateID:   doc.ID,
		EventType:     events.DocumentProcessed,
		Payload:       NewProcessedPayload(doc),
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	logger.Info(ctx, "movement document processed",
		"document_id", doc.ID,
		"number", doc.Number,
		"doc_type", doc.Type,
		"lines", len(doc.Lines),
	)
	return nil
}

// ProcessedPayload is the DocumentProcessed event body.
type ProcessedPayload struct {
	DocumentID        id.ID       `json:"documentId"`
	Number            string      `json:"number"`
	DocType           DocType     `json:"docType"`
	SourceWarehouseID *id.ID      `json:"sourceWarehouseId,omitempty"`
	TargetWarehouseID *id.ID      `json:"targetWarehouseId,omitempty"`
	OrderID           *id.ID      `json:"orderId,omitempty"`
	ReferenceID       *id.ID      `json:"referenceId,omitempty"`
	Lines             []Line      `json:"lines"`
	TotalAmount       types.Money `json:"totalAmount"`
	ProcessedAt       time.Time   `json:"processedAt"`
}

// NewProcessedPayload builds the event body for doc.
func NewProcessedPayload(doc *Document) ProcessedPayload {
	p := ProcessedPayload{
		DocumentID:        doc.ID,
		Number:            doc.Number,
		DocType:           doc.Type,
		SourceWarehouseID: doc.SourceWarehouseID,
		TargetWarehouseID: doc.TargetWarehouseID,
		OrderID:           doc.OrderID,
		ReferenceID:       doc.ReferenceID,
		Lines:             doc.Lines,
		TotalAmount:       doc.TotalAmount(),
	}
	if doc.ProcessedAt != nil {
		p.ProcessedAt = *doc.ProcessedAt
	}
	return p
}

// GetByID returns a document with its lines.
func (p *Processor) GetByID(ctx context.Context, docID id.ID) (*Document, error) {
	return p.repo.GetByID(ctx, docID)
}

// ListByOrder returns the documents linked to an order.
func (p *Processor) ListByOrder(ctx context.Context, orderID id.ID) ([]*Document, error) {
	return p.repo.ListByOrder(ctx, orderID)
}
