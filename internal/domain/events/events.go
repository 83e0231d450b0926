// Package events defines the domain events the ledger emits and the
// publisher contract. Publishers write inside the caller's transaction.
package events

import (
	"context"
	"errors"

	"restoledger/internal/core/id"
)

// Event types.
const (
	DocumentProcessed  = "DocumentProcessed"
	OrderDeducted      = "OrderDeducted"
	OrderStockReturned = "OrderStockReturned"
	OrderStockWasted   = "OrderStockWasted"
	ShiftOpened        = "ShiftOpened"
	ShiftClosed        = "ShiftClosed"
	CashHandedOver     = "CashHandedOver"
	DebtChanged        = "EmployeeDebtChanged"
)

// Aggregate types.
const (
	AggregateDocument = "MovementDocument"
	AggregateOrder    = "Order"
	AggregateShift    = "Shift"
	AggregateEmployee = "Employee"
)

// Event is a fact recorded alongside a ledger mutation.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// Publisher records events. It must be called inside a transaction.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Nop discards events.
var Nop Publisher = PublisherFunc(func(context.Context, Event) error { return nil })

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OrNop returns p, or Nop when p is nil.
func OrNop(p Publisher) Publisher {
	if p == nil {
		return Nop
	}
	return p
}
