package memory

import (
	"context"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/cash"
)

// CashRepo implements cash.Repository.
type CashRepo struct{ s *Store }

var _ cash.Repository = (*CashRepo)(nil)

func (r *CashRepo) CreateEmployee(ctx context.Context, e *cash.Employee) error {
	defer r.s.write(ctx)()
	r.s.st.employees[e.ID] = *e
	return nil
}

func (r *CashRepo) GetEmployee(ctx context.Context, eid id.ID) (*cash.Employee, error) {
	defer r.s.read(ctx)()
	e, ok := r.s.st.employees[eid]
	if !ok {
		return nil, apperror.NewNotFound("employee", eid)
	}
	return &e, nil
}

func (r *CashRepo) GetEmployeeForUpdate(ctx context.Context, eid id.ID) (*cash.Employee, error) {
	return r.GetEmployee(ctx, eid)
}

func (r *CashRepo) UpdateEmployeeBalance(ctx context.Context, eid id.ID, balance types.Money) error {
	defer r.s.write(ctx)()
	e, ok := r.s.st.employees[eid]
	if !ok {
		return apperror.NewNotFound("employee", eid)
	}
	e.CashBalance = balance
	e.Touch()
	r.s.st.employees[eid] = e
	return nil
}

func (r *CashRepo) AddBalanceHistory(ctx context.Context, entry *cash.BalanceHistoryEntry) error {
	defer r.s.write(ctx)()
	r.s.st.history = append(r.s.st.history, *entry)
	return nil
}

func (r *CashRepo) ListBalanceHistory(ctx context.Context, employeeID id.ID) ([]cash.BalanceHistoryEntry, error) {
	defer r.s.read(ctx)()
	var out []cash.BalanceHistoryEntry
	for _, h := range r.s.st.history {
		if h.EmployeeID == employeeID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *CashRepo) CreateShift(ctx context.Context, sh *cash.Shift) error {
	defer r.s.write(ctx)()
	r.s.st.shifts[sh.ID] = *sh
	return nil
}

func (r *CashRepo) GetShift(ctx context.Context, sid id.ID) (*cash.Shift, error) {
	defer r.s.read(ctx)()
	sh, ok := r.s.st.shifts[sid]
	if !ok {
		return nil, apperror.NewNotFound("shift", sid)
	}
	return &sh, nil
}

func (r *CashRepo) GetShiftForUpdate(ctx context.Context, sid id.ID) (*cash.Shift, error) {
	return r.GetShift(ctx, sid)
}

func (r *CashRepo) UpdateShift(ctx context.Context, sh *cash.Shift) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.st.shifts[sh.ID]; !ok {
		return apperror.NewNotFound("shift", sh.ID)
	}
	r.s.st.shifts[sh.ID] = *sh
	return nil
}

func (r *CashRepo) FindOpenShift(ctx context.Context) (*cash.Shift, error) {
	return r.findOpen(ctx, func(cash.Shift) bool { return true })
}

func (r *CashRepo) FindOpenShiftByEmployee(ctx context.Context, employeeID id.ID) (*cash.Shift, error) {
	return r.findOpen(ctx, func(sh cash.Shift) bool { return sh.EmployeeID == employeeID })
}

func (r *CashRepo) findOpen(ctx context.Context, match func(cash.Shift) bool) (*cash.Shift, error) {
	defer r.s.read(ctx)()
	var found *cash.Shift
	for _, sh := range r.s.st.shifts {
		if sh.IsClosed || !match(sh) {
			continue
		}
		if found == nil || sh.OpenedAt.Before(found.OpenedAt) {
			found = &sh
		}
	}
	return found, nil
}

func (r *CashRepo) CreateTransaction(ctx context.Context, t *cash.Transaction) error {
	defer r.s.write(ctx)()
	r.s.st.transactions = append(r.s.st.transactions, *t)
	return nil
}

func (r *CashRepo) ListTransactions(ctx context.Context, shiftID id.ID) ([]cash.Transaction, error) {
	defer r.s.read(ctx)()
	var out []cash.Transaction
	for _, t := range r.s.st.transactions {
		if t.ShiftID == shiftID {
			out = append(out, t)
		}
	}
	return out, nil
}
