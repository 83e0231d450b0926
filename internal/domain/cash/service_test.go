package cash_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/app/apptest"
	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/cash"
	"restoledger/internal/domain/events"
	"restoledger/internal/domain/orders"
)

func completedCashOrder(f *apptest.Fixture, total string, courier *id.ID) *orders.Order {
	return f.Order(orders.ChannelDelivery, orders.PaymentCash, func(o *orders.Order) {
		o.Status = orders.StatusCompleted
		o.Total = types.MustMoney(total)
		o.CourierID = courier
	})
}

func TestOpenShiftTwice(t *testing.T) {
	f := apptest.New(t)
	anna := f.Employee("Anna", cash.RoleCashier)
	ben := f.Employee("Ben", cash.RoleCashier)

	_, err := f.Cash.OpenShift(f.Ctx, anna.ID, types.MustMoney("50"))
	require.NoError(t, err)

	_, err = f.Cash.OpenShift(f.Ctx, anna.ID, types.MustMoney("50"))
	assert.True(t, apperror.Is(err, apperror.CodeShiftAlreadyOpen), "got %v", err)

	_, err = f.Cash.OpenShift(f.Ctx, ben.ID, types.MustMoney("0"))
	assert.True(t, apperror.Is(err, apperror.CodeShiftAlreadyOpen), "one register, one open shift")
}

func TestOpenShiftConcurrently(t *testing.T) {
	f := apptest.New(t)
	var staff []*cash.Employee
	for i := 0; i < 5; i++ {
		staff = append(staff, f.Employee("Cashier", cash.RoleCashier))
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		opened int
	)
	for _, e := range staff {
		wg.Add(1)
		go func(e *cash.Employee) {
			defer wg.Done()
			if _, err := f.Cash.OpenShift(f.Ctx, e.ID, types.Zero()); err == nil {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}(e)
	}
	wg.Wait()
	assert.Equal(t, 1, opened)
}

func TestOpenShiftSweepsOrphans(t *testing.T) {
	f := apptest.New(t)
	anna := f.Employee("Anna", cash.RoleCashier)
	orphan := completedCashOrder(f, "30", nil)

	shift, err := f.Cash.OpenShift(f.Ctx, anna.ID, types.MustMoney("10"))
	require.NoError(t, err)

	got, err := f.Repos.Orders.GetByID(f.Ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, &shift.ID, got.ShiftID)

	stats, err := f.Cash.ShiftStatistics(f.Ctx, shift.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "40", stats.TheoreticalCash)
}

func TestLinkOrderWithoutShift(t *testing.T) {
	f := apptest.New(t)
	o := completedCashOrder(f, "10", nil)

	require.NoError(t, f.Cash.LinkOrderToShift(f.Ctx, o, nil))
	assert.Nil(t, o.ShiftID)

	_, err := f.Cash.CurrentShift(f.Ctx)
	assert.True(t, apperror.Is(err, apperror.CodeNoOpenShift))
}

func TestLinkOrderPrefersEmployeeShift(t *testing.T) {
	f := apptest.New(t)
	anna := f.Employee("Anna", cash.RoleCashier)
	shift, err := f.Cash.OpenShift(f.Ctx, anna.ID, types.Zero())
	require.NoError(t, err)

	o := completedCashOrder(f, "10", nil)
	require.NoError(t, f.Cash.LinkOrderToShift(f.Ctx, o, &anna.ID))
	assert.Equal(t, &shift.ID, o.ShiftID)

	other := id.New()
	o.ShiftID = &other
	require.NoError(t, f.Cash.LinkOrderToShift(f.Ctx, o, &anna.ID))
	assert.Equal(t, &other, o.ShiftID, "linked orders are left alone")
}

func TestRegisterAndUnregisterDebt(t *testing.T) {
	f := apptest.New(t)
	courier := f.Employee("Courier", cash.RoleCourier)
	o := completedCashOrder(f, "25", &courier.ID)

	require.NoError(t, f.Cash.RegisterDebt(f.Ctx, o, courier.ID))
	require.NoError(t, f.Cash.RegisterDebt(f.Ctx, o, courier.ID), "second registration is ignored")

	emp, err := f.Cash.GetEmployee(f.Ctx, courier.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "25", emp.CashBalance)

	require.NoError(t, f.Cash.UnregisterDebt(f.Ctx, o))
	emp, err = f.Cash.GetEmployee(f.Ctx, courier.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "0", emp.CashBalance)
	assert.True(t, o.CashTurnedIn)

	history, err := f.Cash.BalanceHistory(f.Ctx, courier.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	apptest.AssertQty(t, "25", history[0].Delta)
	apptest.AssertQty(t, "-25", history[1].Delta)
	assert.Len(t, f.Events.OfType(events.DebtChanged), 2)
}

func TestRegisterDebtIgnoresCard(t *testing.T) {
	f := apptest.New(t)
	waiter := f.Employee("Waiter", cash.RoleWaiter)
	o := f.Order(orders.ChannelInHouse, orders.PaymentCard, func(o *orders.Order) { o.Total = types.MustMoney("9") })

	require.NoError(t, f.Cash.RegisterDebt(f.Ctx, o, waiter.ID))
	emp, err := f.Cash.GetEmployee(f.Ctx, waiter.ID)
	require.NoError(t, err)
	assert.True(t, emp.CashBalance.IsZero())
}

func TestUnregisterDebtClampsAtZero(t *testing.T) {
	f := apptest.New(t)
	courier := f.Employee("Courier", cash.RoleCourier)
	o := completedCashOrder(f, "30", &courier.ID)
	require.NoError(t, f.Cash.RegisterDebt(f.Ctx, o, courier.ID))
	require.NoError(t, f.Repos.Cash.UpdateEmployeeBalance(f.Ctx, courier.ID, types.MustMoney("10")))

	require.NoError(t, f.Cash.UnregisterDebt(f.Ctx, o))

	emp, err := f.Cash.GetEmployee(f.Ctx, courier.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "0", emp.CashBalance)

	history, err := f.Cash.BalanceHistory(f.Ctx, courier.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "-30", history[len(history)-1].Delta, "history keeps the unclamped delta")
}

func TestUnregisterDebtWithoutResponsible(t *testing.T) {
	f := apptest.New(t)
	courier := f.Employee("Courier", cash.RoleCourier)
	o := completedCashOrder(f, "30", nil)
	require.NoError(t, f.Cash.RegisterDebt(f.Ctx, o, courier.ID))

	require.NoError(t, f.Cash.UnregisterDebt(f.Ctx, o))
	assert.False(t, o.CashTurnedIn, "nobody to charge back, debt stays")
}

func TestHandover(t *testing.T) {
	f := apptest.New(t)
	cashier := f.Employee("Cashier", cash.RoleCashier)
	courier := f.Employee("Courier", cash.RoleCourier)
	shift, err := f.Cash.OpenShift(f.Ctx, cashier.ID, types.MustMoney("20"))
	require.NoError(t, err)

	first := completedCashOrder(f, "100", &courier.ID)
	second := completedCashOrder(f, "50", &courier.ID)
	card := f.Order(orders.ChannelDelivery, orders.PaymentCard, func(o *orders.Order) {
		o.Status = orders.StatusCompleted
		o.Total = types.MustMoney("70")
		o.ShiftID = &shift.ID
	})
	for _, o := range []*orders.Order{first, second} {
		require.NoError(t, f.Cash.OnOrderCompleted(f.Ctx, o, &courier.ID))
	}

	emp, err := f.Cash.GetEmployee(f.Ctx, courier.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "150", emp.CashBalance)

	res, err := f.Cash.Handover(f.Ctx, shift.ID, courier.ID, []id.ID{first.ID, card.ID})
	require.NoError(t, err)
	apptest.AssertQty(t, "100", res.Transaction.Amount)
	apptest.AssertQty(t, "50", res.Balance)
	assert.Equal(t, []id.ID{first.ID}, res.OrderIDs)

	history, err := f.Cash.BalanceHistory(f.Ctx, courier.ID)
	require.NoError(t, err)
	require.Len(t, history, 3, "two collections and one handover")
	last := history[2]
	apptest.AssertQty(t, "-100", last.Delta)
	apptest.AssertQty(t, "50", last.ResultingBalance)
	assert.Nil(t, last.OrderID)

	_, err = f.Cash.Handover(f.Ctx, shift.ID, courier.ID, []id.ID{first.ID})
	assert.True(t, apperror.Is(err, apperror.CodeNothingToHandOver), "got %v", err)

	stats, err := f.Cash.ShiftStatistics(f.Ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.OrdersCount)
	apptest.AssertQty(t, "150", stats.CashSales)
	apptest.AssertQty(t, "70", stats.CardSales)
	apptest.AssertQty(t, "220", stats.TotalSales)
	apptest.AssertQty(t, "100", stats.CashTurnedIn)
	apptest.AssertQty(t, "50", stats.CashOutstanding)
	apptest.AssertQty(t, "100", stats.Handovers)
	apptest.AssertQty(t, "120", stats.TheoreticalCash, "float + turned-in cash, handovers not added twice")
}

func TestHandoverLinksUnlinkedOrders(t *testing.T) {
	f := apptest.New(t)
	cashier := f.Employee("Cashier", cash.RoleCashier)
	courier := f.Employee("Courier", cash.RoleCourier)
	shift, err := f.Cash.OpenShift(f.Ctx, cashier.ID, types.Zero())
	require.NoError(t, err)

	o := completedCashOrder(f, "60", &courier.ID)
	require.NoError(t, f.Cash.RegisterDebt(f.Ctx, o, courier.ID))
	require.Nil(t, o.ShiftID)

	_, err = f.Cash.Handover(f.Ctx, shift.ID, courier.ID, []id.ID{o.ID})
	require.NoError(t, err)

	got, err := f.Repos.Orders.GetByID(f.Ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ShiftID)
	assert.Equal(t, shift.ID, *got.ShiftID)
	assert.True(t, got.CashTurnedIn)

	stats, err := f.Cash.ShiftStatistics(f.Ctx, shift.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "60", stats.CashTurnedIn)
}

func TestHandoverCountsRepeatedOrderOnce(t *testing.T) {
	f := apptest.New(t)
	cashier := f.Employee("Cashier", cash.RoleCashier)
	courier := f.Employee("Courier", cash.RoleCourier)
	shift, err := f.Cash.OpenShift(f.Ctx, cashier.ID, types.Zero())
	require.NoError(t, err)

	o := completedCashOrder(f, "40", &courier.ID)
	require.NoError(t, f.Cash.RegisterDebt(f.Ctx, o, courier.ID))

	res, err := f.Cash.Handover(f.Ctx, shift.ID, courier.ID, []id.ID{o.ID, o.ID})
	require.NoError(t, err)
	apptest.AssertQty(t, "40", res.Transaction.Amount)
	apptest.AssertQty(t, "0", res.Balance)
	assert.Equal(t, []id.ID{o.ID}, res.OrderIDs)

	history, err := f.Cash.BalanceHistory(f.Ctx, courier.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	apptest.AssertQty(t, "-40", history[1].Delta)
}

func TestOnOrderCompletedLinksCardOrders(t *testing.T) {
	f := apptest.New(t)
	cashier := f.Employee("Cashier", cash.RoleCashier)
	waiter := f.Employee("Waiter", cash.RoleWaiter)
	shift, err := f.Cash.OpenShift(f.Ctx, cashier.ID, types.Zero())
	require.NoError(t, err)

	card := f.Order(orders.ChannelInHouse, orders.PaymentCard, func(o *orders.Order) {
		o.Status = orders.StatusCompleted
		o.Total = types.MustMoney("35")
	})
	require.NoError(t, f.Cash.OnOrderCompleted(f.Ctx, card, &waiter.ID))

	require.NotNil(t, card.ShiftID)
	assert.Equal(t, shift.ID, *card.ShiftID)

	emp, err := f.Cash.GetEmployee(f.Ctx, waiter.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "0", emp.CashBalance, "card payments are not staff debt")

	stats, err := f.Cash.ShiftStatistics(f.Ctx, shift.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "35", stats.CardSales)
	apptest.AssertQty(t, "35", stats.TotalSales)
}

func TestAddTransactionAndClose(t *testing.T) {
	f := apptest.New(t)
	cashier := f.Employee("Cashier", cash.RoleCashier)
	shift, err := f.Cash.OpenShift(f.Ctx, cashier.ID, types.MustMoney("100"))
	require.NoError(t, err)
	completedCashOrder(f, "40", nil)
	cancelled := completedCashOrder(f, "999", nil)

	o, err := f.Repos.Orders.GetByID(f.Ctx, cancelled.ID)
	require.NoError(t, err)
	o.Status = orders.StatusCancelled
	o.ShiftID = &shift.ID
	require.NoError(t, f.Repos.Orders.Update(f.Ctx, o))

	others, err := f.Repos.Orders.ListOrphanedCash(f.Ctx)
	require.NoError(t, err)
	for _, orphan := range others {
		require.NoError(t, f.Cash.LinkOrderToShift(f.Ctx, orphan, nil))
	}

	_, err = f.Cash.AddTransaction(f.Ctx, shift.ID, cash.TransactionIn, types.MustMoney("15"), "change")
	require.NoError(t, err)
	_, err = f.Cash.AddTransaction(f.Ctx, shift.ID, cash.TransactionOut, types.MustMoney("5"), "supplies")
	require.NoError(t, err)

	_, err = f.Cash.AddTransaction(f.Ctx, shift.ID, cash.TransactionOut, types.MustMoney("0"), "")
	assert.True(t, apperror.Is(err, apperror.CodeInvalidQuantity))
	_, err = f.Cash.AddTransaction(f.Ctx, shift.ID, cash.TransactionHandover, types.MustMoney("1"), "")
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	stats, err := f.Cash.CloseShift(f.Ctx, shift.ID, types.MustMoney("148"))
	require.NoError(t, err)
	apptest.AssertQty(t, "150", stats.TheoreticalCash, "100 + 40 + 15 - 5; cancelled excluded")
	apptest.AssertQty(t, "-2", *stats.Difference)
	assert.True(t, stats.IsClosed)

	_, err = f.Cash.CloseShift(f.Ctx, shift.ID, types.MustMoney("148"))
	assert.True(t, apperror.Is(err, apperror.CodeAlreadyClosed), "got %v", err)
	_, err = f.Cash.AddTransaction(f.Ctx, shift.ID, cash.TransactionIn, types.MustMoney("1"), "")
	assert.True(t, apperror.Is(err, apperror.CodeAlreadyClosed))

	completedCashOrder(f, "500", nil)
	frozen, err := f.Cash.ShiftStatistics(f.Ctx, shift.ID)
	require.NoError(t, err)
	apptest.AssertQty(t, "150", frozen.TheoreticalCash, "closed shifts are frozen")
	apptest.AssertQty(t, "40", frozen.CashTurnedIn)
	apptest.AssertQty(t, "-2", *frozen.Difference)

	_, err = f.Cash.OpenShift(f.Ctx, cashier.ID, types.Zero())
	require.NoError(t, err, "a new shift may open after close")
	assert.Len(t, f.Events.OfType(events.ShiftClosed), 1)
}
