package deduction

import (
	"context"
	"fmt"
	"time"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/core/tx"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/domain/events"
	"restoledger/internal/domain/orders"
	"restoledger/pkg/logger"
)

// MovementProcessor creates and applies movement documents.
type MovementProcessor interface {
	ProcessMovement(ctx context.Context, req movement.Request) (*movement.Document, error)
}

// CashLedger receives order completion and cancellation notifications.
type CashLedger interface {
	OnOrderCompleted(ctx context.Context, order *orders.Order, employeeID *id.ID) error
	UnregisterDebt(ctx context.Context, order *orders.Order) error
}

// Service orchestrates order deductions and returns.
type Service struct {
	orders    orders.Repository
	resolver  *Resolver
	processor MovementProcessor
	cash      CashLedger
	events    events.Publisher
	txManager tx.Manager
}

// NewService creates the deduction orchestrator. cash may be nil.
func NewService(
	orderRepo orders.Repository,
	resolver *Resolver,
	processor MovementProcessor,
	cash CashLedger,
	publisher events.Publisher,
	txManager tx.Manager,
) *Service {
	return &Service{
		orders:    orderRepo,
		resolver:  resolver,
		processor: processor,
		cash:      cash,
		events:    events.OrNop(publisher),
		txManager: txManager,
	}
}

// Outcome reports what a deduct or reverse call did.
type Outcome struct {
	OrderID   id.ID                `json:"orderId"`
	Skipped   bool                 `json:"skipped"`
	Reason    string               `json:"reason,omitempty"`
	Documents []*movement.Document `json:"documents,omitempty"`
	Plan      *Plan                `json:"plan,omitempty"`
}

// Deduct writes off everything the order consumes, one deduction document
// per storage warehouse, and flags the order as deducted.
func (s *Service) Deduct(ctx context.Context, orderID id.ID) (*Outcome, error) {
	out := &Outcome{OrderID: orderID}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		return s.deduct(ctx, order, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) deduct(ctx context.Context, order *orders.Order, out *Outcome) error {
	if order.IsInventoryDeducted {
		out.Skipped, out.Reason = true, "already deducted"
		return nil
	}
	if len(order.Lines) == 0 {
		order.IsInventoryDeducted = true
		out.Skipped, out.Reason = true, "no lines"
		return s.orders.Update(ctx, order)
	}

	plan, err := s.resolver.ResolveOrder(ctx, order)
	if err != nil {
		if apperror.Is(err, apperror.CodeNoWarehouses) {
			logger.Warn(ctx, "deduction aborted: no warehouse configured", "order_id", order.ID)
			out.Skipped, out.Reason = true, "no warehouses"
			return nil
		}
		return fmt.Errorf("resolve order: %w", err)
	}
	out.Plan = plan

	for _, g := range plan.Groups {
		if len(g.Lines) == 0 {
			continue
		}
		warehouseID := g.WarehouseID
		doc, err := s.processor.ProcessMovement(ctx, movement.Request{
			Type:              movement.DocTypeDeduction,
			Lines:             lineInputs(g),
			SourceWarehouseID: &warehouseID,
			OrderID:           &order.ID,
			Comment:           "order " + order.Number,
		})
		if err != nil {
			return fmt.Errorf("deduct from warehouse %s: %w", warehouseID, err)
		}
		out.Documents = append(out.Documents, doc)
	}

	order.IsInventoryDeducted = true
	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}

	logger.Info(ctx, "order deducted",
		"order_id", order.ID, "documents", len(out.Documents), "cost", plan.TotalCost().String())
	return s.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateOrder,
		AggregateID:   order.ID,
		EventType:     events.OrderDeducted,
		Payload:       plan,
	})
}

// Reverse returns a deducted order's consumption to stock. The amounts are
// recomputed from the order's current lines, recipes and rules.
func (s *Service) Reverse(ctx context.Context, orderID id.ID) (*Outcome, error) {
	out := &Outcome{OrderID: orderID}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		return s.reverse(ctx, order, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) reverse(ctx context.Context, order *orders.Order, out *Outcome) error {
	if !order.IsInventoryDeducted {
		out.Skipped, out.Reason = true, "not deducted"
		return nil
	}
	if order.StockWrittenOff {
		out.Skipped, out.Reason = true, "stock written off"
		return nil
	}

	plan := &Plan{}
	if len(order.Lines) > 0 {
		resolved, err := s.resolver.ResolveOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("resolve order: %w", err)
		}
		plan = resolved
	}
	out.Plan = plan

	for _, g := range plan.Groups {
		if len(g.Lines) == 0 {
			continue
		}
		warehouseID := g.WarehouseID
		doc, err := s.processor.ProcessMovement(ctx, movement.Request{
			Type:              movement.DocTypeReturn,
			Lines:             lineInputs(g),
			TargetWarehouseID: &warehouseID,
			OrderID:           &order.ID,
			Comment:           "return for order " + order.Number,
		})
		if err != nil {
			return fmt.Errorf("return to warehouse %s: %w", warehouseID, err)
		}
		out.Documents = append(out.Documents, doc)
	}

	order.IsInventoryDeducted = false
	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}

	logger.Info(ctx, "order stock returned", "order_id", order.ID, "documents", len(out.Documents))
	return s.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateOrder,
		AggregateID:   order.ID,
		EventType:     events.OrderStockReturned,
		Payload:       plan,
	})
}

// MarkWaste records that a cancelled order's stock is not coming back.
func (s *Service) MarkWaste(ctx context.Context, orderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		return s.markWaste(ctx, order)
	})
}

func (s *Service) markWaste(ctx context.Context, order *orders.Order) error {
	if order.StockWrittenOff {
		return nil
	}
	order.StockWrittenOff = true
	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}
	return s.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateOrder,
		AggregateID:   order.ID,
		EventType:     events.OrderStockWasted,
		Payload:       map[string]any{"deducted": order.IsInventoryDeducted},
	})
}

// StatusChangeOptions tune OnStatusChange.
type StatusChangeOptions struct {
	// SkipReturn keeps the stock written off when a deducted order is cancelled.
	SkipReturn bool
	// EmployeeID is the staff member completing the order.
	EmployeeID *id.ID
}

// OnStatusChange applies the stock and cash side effects of an order entering
// status to. Only completed and cancelled have effects, and re-posting the
// current status changes nothing.
func (s *Service) OnStatusChange(ctx context.Context, orderID id.ID, to orders.Status, opts StatusChangeOptions) (*Outcome, error) {
	out := &Outcome{OrderID: orderID}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if order.Status == to {
			out.Skipped, out.Reason = true, "status unchanged"
			return nil
		}

		order.Status = to
		switch to {
		case orders.StatusCompleted:
			now := time.Now().UTC()
			order.CompletedAt = &now
			if order.CompletedByID == nil {
				order.CompletedByID = opts.EmployeeID
			}
			if err := s.deduct(ctx, order, out); err != nil {
				return err
			}
			if s.cash != nil {
				if err := s.cash.OnOrderCompleted(ctx, order, opts.EmployeeID); err != nil {
					return err
				}
			}
		case orders.StatusCancelled:
			if opts.SkipReturn {
				if err := s.markWaste(ctx, order); err != nil {
					return err
				}
				out.Skipped, out.Reason = true, "stock written off"
			} else if err := s.reverse(ctx, order, out); err != nil {
				return err
			}
			if s.cash != nil {
				if err := s.cash.UnregisterDebt(ctx, order); err != nil {
					return err
				}
			}
		default:
			out.Skipped, out.Reason = true, "no stock effect"
		}
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PrimeCost estimates the order's ingredient cost at current costs. It reads
// only and writes nothing.
func (s *Service) PrimeCost(ctx context.Context, orderID id.ID) (types.Money, *Plan, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return types.Zero(), nil, err
	}
	if len(order.Lines) == 0 {
		return types.Zero(), &Plan{}, nil
	}
	plan, err := s.resolver.ResolveOrder(ctx, order)
	if err != nil {
		return types.Zero(), nil, err
	}
	return plan.TotalCost(), plan, nil
}

func lineInputs(g Group) []movement.LineInput {
	inputs := make([]movement.LineInput, 0, len(g.Lines))
	for _, l := range g.Lines {
		inputs = append(inputs, movement.LineInput{
			IngredientID: l.IngredientID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
		})
	}
	return inputs
}
