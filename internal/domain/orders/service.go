package orders

import (
	"context"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/core/tx"
	"restoledger/pkg/logger"
)

// Service registers orders handed over by the ordering system.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates an order service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create validates and stores a new order with its lines and add-ons.
func (s *Service) Create(ctx context.Context, o *Order) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}
	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, o)
	}); err != nil {
		return err
	}

	logger.Info(ctx, "order registered", "order_id", o.ID, "channel", o.Channel, "total", o.Total)
	return nil
}

// GetByID returns an order with its lines.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// Validate implements entity.Validatable interface.
func (o *Order) Validate(_ context.Context) error {
	if !o.Channel.Valid() {
		return apperror.NewValidation("unknown channel").WithDetail("channel", o.Channel)
	}
	if o.PaymentMethod != PaymentCash && o.PaymentMethod != PaymentCard {
		return apperror.NewValidation("unknown payment method").WithDetail("paymentMethod", o.PaymentMethod)
	}
	for i, l := range o.Lines {
		if !l.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity(l.Quantity).WithDetail("line", i+1)
		}
		if l.Price.IsNegative() {
			return apperror.NewValidation("price cannot be negative").WithDetail("line", i+1)
		}
	}
	return nil
}
