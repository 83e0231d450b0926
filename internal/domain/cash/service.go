package cash

import (
	"context"
	"fmt"
	"time"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/core/lock"
	"restoledger/internal/core/tx"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/audit"
	"restoledger/internal/domain/events"
	"restoledger/internal/domain/orders"
	"restoledger/pkg/logger"
)

// DefaultLockTTL bounds how long the register lock is held by one operation.
const DefaultLockTTL = 10 * time.Second

// Service implements the cash shift ledger.
type Service struct {
	repo      Repository
	orders    orders.Repository
	locker    lock.Locker
	lockTTL   time.Duration
	events    events.Publisher
	txManager tx.Manager
}

// NewService creates a cash ledger service.
func NewService(
	repo Repository,
	orderRepo orders.Repository,
	locker lock.Locker,
	publisher events.Publisher,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		orders:    orderRepo,
		locker:    locker,
		lockTTL:   DefaultLockTTL,
		events:    events.OrNop(publisher),
		txManager: txManager,
	}
}

// WithLockTTL overrides the register lock TTL.
func (s *Service) WithLockTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.lockTTL = ttl
	}
	return s
}

// CreateEmployee registers a staff member.
func (s *Service) CreateEmployee(ctx context.Context, e *Employee) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}
	return s.repo.CreateEmployee(ctx, e)
}

// GetEmployee returns a staff member.
func (s *Service) GetEmployee(ctx context.Context, employeeID id.ID) (*Employee, error) {
	return s.repo.GetEmployee(ctx, employeeID)
}

// BalanceHistory returns the audit trail of an employee's cash balance.
func (s *Service) BalanceHistory(ctx context.Context, employeeID id.ID) ([]BalanceHistoryEntry, error) {
	return s.repo.ListBalanceHistory(ctx, employeeID)
}

// CurrentShift returns the open shift or NO_OPEN_SHIFT.
func (s *Service) CurrentShift(ctx context.Context) (*Shift, error) {
	shift, err := s.repo.FindOpenShift(ctx)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.NewNoOpenShift()
	}
	return shift, nil
}

// GetShift returns a shift.
func (s *Service) GetShift(ctx context.Context, shiftID id.ID) (*Shift, error) {
	return s.repo.GetShift(ctx, shiftID)
}

// OpenShift opens the register for employeeID. Only one shift may be open
// system-wide. Completed cash orders that never got a shift link are swept
// into the new shift.
func (s *Service) OpenShift(ctx context.Context, employeeID id.ID, openingFloat types.Money) (*Shift, error) {
	if openingFloat.IsNegative() {
		return nil, apperror.NewValidation("opening float cannot be negative").WithDetail("field", "openingFloat")
	}

	var shift *Shift
	err := lock.WithLock(ctx, s.locker, lock.RegisterKey, s.lockTTL, func(ctx context.Context) error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if _, err := s.repo.GetEmployee(ctx, employeeID); err != nil {
				return err
			}

			own, err := s.repo.FindOpenShiftByEmployee(ctx, employeeID)
			if err != nil {
				return err
			}
			if own != nil {
				return apperror.NewShiftAlreadyOpen(own.ID.String()).WithDetail("employee_id", employeeID.String())
			}
			open, err := s.repo.FindOpenShift(ctx)
			if err != nil {
				return err
			}
			if open != nil {
				return apperror.NewShiftAlreadyOpen(open.ID.String())
			}

			shift = NewShift(employeeID, openingFloat)
			if err := s.repo.CreateShift(ctx, shift); err != nil {
				return fmt.Errorf("create shift: %w", err)
			}

			orphans, err := s.orders.ListOrphanedCash(ctx)
			if err != nil {
				return fmt.Errorf("list orphaned orders: %w", err)
			}
			for _, o := range orphans {
				o.ShiftID = &shift.ID
				if err := s.orders.Update(ctx, o); err != nil {
					return fmt.Errorf("link orphaned order %s: %w", o.ID, err)
				}
			}
			if len(orphans) > 0 {
				logger.Info(ctx, "swept orphaned cash orders into new shift",
					"shift_id", shift.ID, "count", len(orphans))
			}

			return s.events.Publish(ctx, events.Event{
				AggregateType: events.AggregateShift,
				AggregateID:   shift.ID,
				EventType:     events.ShiftOpened,
				Payload: map[string]any{
					"employeeId":   employeeID,
					"openingFloat": openingFloat,
					"sweptOrders":  len(orphans),
				},
			})
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "shift opened", "shift_id", shift.ID, "employee_id", employeeID)
	return shift, nil
}

// LinkOrderToShift attaches an unlinked order to the hinted employee's open
// shift, else to any open shift. With no open shift the order stays unlinked
// until the next OpenShift sweeps it.
func (s *Service) LinkOrderToShift(ctx context.Context, order *orders.Order, employeeHint *id.ID) error {
	if order.ShiftID != nil {
		return nil
	}

	var (
		shift *Shift
		err   error
	)
	if employeeHint != nil {
		if shift, err = s.repo.FindOpenShiftByEmployee(ctx, *employeeHint); err != nil {
			return err
		}
	}
	if shift == nil {
		if shift, err = s.repo.FindOpenShift(ctx); err != nil {
			return err
		}
	}
	if shift == nil {
		logger.Debug(ctx, "no open shift, order left unlinked", "order_id", order.ID)
		return nil
	}

	order.ShiftID = &shift.ID
	return s.orders.Update(ctx, order)
}

// RegisterDebt records that employeeID collected the order's cash.
// Non-cash orders are ignored.
func (s *Service) RegisterDebt(ctx context.Context, order *orders.Order, employeeID id.ID) error {
	if !order.IsCash() {
		return nil
	}
	if !order.CashTurnedIn {
		logger.Warn(ctx, "order cash already registered as debt", "order_id", order.ID)
		return nil
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.changeBalance(ctx, employeeID, order.Total, "cash collected for order "+order.Number, &order.ID); err != nil {
			return err
		}
		order.CashTurnedIn = false
		return s.orders.Update(ctx, order)
	})
}

// UnregisterDebt takes back a registered debt, for example when the order is
// cancelled. The responsible employee is the courier, then the accepting
// waiter, then whoever completed the order.
func (s *Service) UnregisterDebt(ctx context.Context, order *orders.Order) error {
	if !order.HasOutstandingCash() {
		return nil
	}

	responsible := order.ResponsibleEmployee()
	if responsible == nil {
		logger.Warn(ctx, "cannot unregister debt: no responsible employee", "order_id", order.ID)
		return nil
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.changeBalance(ctx, *responsible, order.Total.Neg(), "debt cancelled for order "+order.Number, &order.ID); err != nil {
			return err
		}
		order.CashTurnedIn = true
		return s.orders.Update(ctx, order)
	})
}

// OnOrderCompleted links a completed order to a shift and, for a cash order
// completed by a courier or waiter, registers the cash as their debt.
func (s *Service) OnOrderCompleted(ctx context.Context, order *orders.Order, employeeID *id.ID) error {
	if err := s.LinkOrderToShift(ctx, order, employeeID); err != nil {
		return err
	}
	if !order.IsCash() || employeeID == nil {
		return nil
	}

	emp, err := s.repo.GetEmployee(ctx, *employeeID)
	if err != nil {
		return err
	}
	if !emp.CollectsCash() {
		return nil
	}
	return s.RegisterDebt(ctx, order, emp.ID)
}

// HandoverResult describes a completed handover.
type HandoverResult struct {
	Transaction *Transaction `json:"transaction"`
	OrderIDs    []id.ID      `json:"orderIds"`
	Balance     types.Money  `json:"balance"`
}

// Handover moves an employee's collected cash for the named orders into the
// cashier's shift. Only cash orders not yet turned in qualify.
func (s *Service) Handover(ctx context.Context, shiftID, employeeID id.ID, orderIDs []id.ID) (*HandoverResult, error) {
	var result *HandoverResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		shift, err := s.repo.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if err := shift.EnsureOpen(); err != nil {
			return err
		}
		if _, err := s.repo.GetEmployeeForUpdate(ctx, employeeID); err != nil {
			return err
		}

		candidates, err := s.orders.ListByIDsForUpdate(ctx, uniqueIDs(orderIDs))
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}

		total := types.Zero()
		var handed []id.ID
		for _, o := range candidates {
			if !o.HasOutstandingCash() {
				continue
			}
			o.CashTurnedIn = true
			if o.ShiftID == nil {
				o.ShiftID = &shift.ID
			}
			if err := s.orders.Update(ctx, o); err != nil {
				return fmt.Errorf("update order %s: %w", o.ID, err)
			}
			total = total.Add(o.Total)
			handed = append(handed, o.ID)
		}
		if len(handed) == 0 {
			return apperror.NewNothingToHandOver(employeeID.String())
		}

		balance, err := s.changeBalance(ctx, employeeID, total.Neg(), fmt.Sprintf("handover of %d orders", len(handed)), nil)
		if err != nil {
			return err
		}

		txn := &Transaction{
			ID:         id.New(),
			ShiftID:    shift.ID,
			Amount:     total,
			Type:       TransactionHandover,
			Comment:    fmt.Sprintf("handover of %d orders", len(handed)),
			EmployeeID: &employeeID,
			CreatedBy:  audit.Actor(ctx),
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.repo.CreateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		result = &HandoverResult{Transaction: txn, OrderIDs: handed, Balance: balance}
		return s.events.Publish(ctx, events.Event{
			AggregateType: events.AggregateShift,
			AggregateID:   shift.ID,
			EventType:     events.CashHandedOver,
			Payload: map[string]any{
				"employeeId": employeeID,
				"amount":     total,
				"orderIds":   handed,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "cash handed over",
		"shift_id", shiftID, "employee_id", employeeID,
		"amount", result.Transaction.Amount.String(), "orders", len(result.OrderIDs))
	return result, nil
}

// AddTransaction records a service cash-in or cash-out on an open shift.
func (s *Service) AddTransaction(ctx context.Context, shiftID id.ID, txnType TransactionType, amount types.Money, comment string) (*Transaction, error) {
	if txnType != TransactionIn && txnType != TransactionOut {
		return nil, apperror.NewValidation("only service in/out transactions can be added").
			WithDetail("field", "type").WithDetail("value", string(txnType))
	}
	if !amount.IsPositive() {
		return nil, apperror.NewInvalidQuantity(amount.String())
	}

	var txn *Transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		shift, err := s.repo.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if err := shift.EnsureOpen(); err != nil {
			return err
		}
		txn = &Transaction{
			ID:        id.New(),
			ShiftID:   shift.ID,
			Amount:    amount,
			Type:      txnType,
			Comment:   comment,
			CreatedBy: audit.Actor(ctx),
			CreatedAt: time.Now().UTC(),
		}
		return s.repo.CreateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ShiftStatistics computes live totals for an open shift and returns the
// frozen totals of a closed one.
func (s *Service) ShiftStatistics(ctx context.Context, shiftID id.ID) (*Statistics, error) {
	shift, err := s.repo.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.IsClosed {
		return frozenStatistics(shift), nil
	}
	return s.computeStatistics(ctx, shift)
}

func (s *Service) computeStatistics(ctx context.Context, shift *Shift) (*Statistics, error) {
	linked, err := s.orders.ListByShift(ctx, shift.ID)
	if err != nil {
		return nil, fmt.Errorf("list shift orders: %w", err)
	}
	txns, err := s.repo.ListTransactions(ctx, shift.ID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	st := &Statistics{
		ShiftID:         shift.ID,
		OpeningFloat:    shift.OpeningFloat,
		CashSales:       types.Zero(),
		CardSales:       types.Zero(),
		CashTurnedIn:    types.Zero(),
		CashOutstanding: types.Zero(),
		ServiceIn:       types.Zero(),
		ServiceOut:      types.Zero(),
		Handovers:       types.Zero(),
	}

	for _, o := range linked {
		if o.Status == orders.StatusCancelled {
			continue
		}
		st.OrdersCount++
		if !o.IsCash() {
			st.CardSales = st.CardSales.Add(o.Total)
			continue
		}
		st.CashSales = st.CashSales.Add(o.Total)
		if o.CashTurnedIn {
			st.CashTurnedIn = st.CashTurnedIn.Add(o.Total)
		} else {
			st.CashOutstanding = st.CashOutstanding.Add(o.Total)
		}
	}

	for _, t := range txns {
		switch t.Type {
		case TransactionIn:
			st.ServiceIn = st.ServiceIn.Add(t.Amount)
		case TransactionOut:
			st.ServiceOut = st.ServiceOut.Add(t.Amount)
		case TransactionHandover:
			st.Handovers = st.Handovers.Add(t.Amount)
		}
	}

	st.TotalSales = st.CashSales.Add(st.CardSales)
	st.TheoreticalCash = st.OpeningFloat.Add(st.CashTurnedIn).Add(st.ServiceIn).Sub(st.ServiceOut)
	return st, nil
}

func frozenStatistics(shift *Shift) *Statistics {
	st := &Statistics{
		ShiftID:         shift.ID,
		IsClosed:        true,
		OpeningFloat:    shift.OpeningFloat,
		CashSales:       shift.CashSales,
		CardSales:       shift.CardSales,
		TotalSales:      shift.CashSales.Add(shift.CardSales),
		ServiceIn:       shift.ServiceIn,
		ServiceOut:      shift.ServiceOut,
		Handovers:       shift.Handovers,
		TheoreticalCash: shift.ExpectedCash,
		ActualCash:      shift.ClosingCash,
	}
	st.CashTurnedIn = shift.ExpectedCash.Sub(shift.OpeningFloat).Sub(shift.ServiceIn).Add(shift.ServiceOut)
	if shift.ClosingCash != nil {
		diff := shift.ClosingCash.Sub(shift.ExpectedCash)
		st.Difference = &diff
	}
	return st
}

// CloseShift freezes the shift's statistics together with the counted cash
// and closes it. A closed shift is never reopened or re-totaled.
func (s *Service) CloseShift(ctx context.Context, shiftID id.ID, actualCash types.Money) (*Statistics, error) {
	if actualCash.IsNegative() {
		return nil, apperror.NewValidation("counted cash cannot be negative").WithDetail("field", "actualCash")
	}

	var stats *Statistics
	err := lock.WithLock(ctx, s.locker, lock.RegisterKey, s.lockTTL, func(ctx context.Context) error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			shift, err := s.repo.GetShiftForUpdate(ctx, shiftID)
			if err != nil {
				return err
			}
			if err := shift.EnsureOpen(); err != nil {
				return err
			}

			live, err := s.computeStatistics(ctx, shift)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			shift.CashSales = live.CashSales
			shift.CardSales = live.CardSales
			shift.ServiceIn = live.ServiceIn
			shift.ServiceOut = live.ServiceOut
			shift.Handovers = live.Handovers
			shift.ExpectedCash = live.TheoreticalCash
			shift.ClosingCash = &actualCash
			shift.ClosedAt = &now
			shift.IsClosed = true
			shift.Touch()
			if err := s.repo.UpdateShift(ctx, shift); err != nil {
				return fmt.Errorf("update shift: %w", err)
			}

			stats = live
			stats.IsClosed = true
			stats.ActualCash = &actualCash
			diff := actualCash.Sub(live.TheoreticalCash)
			stats.Difference = &diff

			return s.events.Publish(ctx, events.Event{
				AggregateType: events.AggregateShift,
				AggregateID:   shift.ID,
				EventType:     events.ShiftClosed,
				Payload:       stats,
			})
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "shift closed",
		"shift_id", shiftID,
		"expected_cash", stats.TheoreticalCash.String(),
		"actual_cash", actualCash.String(),
		"difference", stats.Difference.String(),
	)
	return stats, nil
}

// changeBalance applies delta to the employee balance under its row lock,
// clamping at zero, and appends an audit row carrying the unclamped delta.
func (s *Service) changeBalance(ctx context.Context, employeeID id.ID, delta types.Money, reason string, orderID *id.ID) (types.Money, error) {
	emp, err := s.repo.GetEmployeeForUpdate(ctx, employeeID)
	if err != nil {
		return types.Zero(), err
	}

	balance := types.ClampNonNegative(emp.CashBalance.Add(delta))
	if err := s.repo.UpdateEmployeeBalance(ctx, employeeID, balance); err != nil {
		return types.Zero(), fmt.Errorf("update balance: %w", err)
	}

	entry := &BalanceHistoryEntry{
		ID:               id.New(),
		EmployeeID:       employeeID,
		Delta:            delta,
		ResultingBalance: balance,
		Reason:           reason,
		OrderID:          orderID,
		CreatedBy:        audit.Actor(ctx),
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.AddBalanceHistory(ctx, entry); err != nil {
		return types.Zero(), fmt.Errorf("add balance history: %w", err)
	}

	return balance, s.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateEmployee,
		AggregateID:   employeeID,
		EventType:     events.DebtChanged,
		Payload:       entry,
	})
}

func uniqueIDs(ids []id.ID) []id.ID {
	seen := make(map[id.ID]struct{}, len(ids))
	out := make([]id.ID, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
