// Package cash_repo provides the PostgreSQL repository for employees,
// shifts and cash transactions.
package cash_repo

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/cash"
	"restoledger/internal/infrastructure/storage/postgres"
)

const (
	employeeTable    = "employees"
	historyTable     = "employee_balance_history"
	shiftTable       = "cash_shifts"
	transactionTable = "cash_transactions"
)

var (
	employeeColumns    = postgres.ExtractDBColumns[cash.Employee]()
	historyColumns     = postgres.ExtractDBColumns[cash.BalanceHistoryEntry]()
	shiftColumns       = postgres.ExtractDBColumns[cash.Shift]()
	transactionColumns = postgres.ExtractDBColumns[cash.Transaction]()
)

// CashRepo implements cash.Repository.
type CashRepo struct {
	postgres.Repo
}

var _ cash.Repository = (*CashRepo)(nil)

// NewCashRepo creates a new cash repository.
func NewCashRepo(txm *postgres.TxManager) *CashRepo {
	return &CashRepo{Repo: postgres.NewRepo(txm)}
}

func (r *CashRepo) CreateEmployee(ctx context.Context, e *cash.Employee) error {
	return r.Insert(ctx, employeeTable, employeeColumns, e)
}

func (r *CashRepo) GetEmployee(ctx context.Context, eid id.ID) (*cash.Employee, error) {
	return r.getEmployee(ctx, eid, "")
}

func (r *CashRepo) GetEmployeeForUpdate(ctx context.Context, eid id.ID) (*cash.Employee, error) {
	return r.getEmployee(ctx, eid, "FOR UPDATE")
}

func (r *CashRepo) getEmployee(ctx context.Context, eid id.ID, suffix string) (*cash.Employee, error) {
	var e cash.Employee
	q := postgres.Builder().Select(employeeColumns...).From(employeeTable).Where(sq.Eq{"id": eid})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	if err := r.Get(ctx, &e, q, "employee", eid); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *CashRepo) UpdateEmployeeBalance(ctx context.Context, eid id.ID, balance types.Money) error {
	q := postgres.Builder().Update(employeeTable).
		Set("cash_balance", balance).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": eid})
	return r.ExecOne(ctx, q, "employee", eid)
}

func (r *CashRepo) AddBalanceHistory(ctx context.Context, entry *cash.BalanceHistoryEntry) error {
	return r.Insert(ctx, historyTable, historyColumns, entry)
}

func (r *CashRepo) ListBalanceHistory(ctx context.Context, employeeID id.ID) ([]cash.BalanceHistoryEntry, error) {
	var out []cash.BalanceHistoryEntry
	q := postgres.Builder().Select(historyColumns...).From(historyTable).
		Where(sq.Eq{"employee_id": employeeID}).
		OrderBy("created_at", "id")
	if err := r.Select(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CashRepo) shiftSelect() sq.SelectBuilder {
	return postgres.Builder().Select(shiftColumns...).From(shiftTable)
}

func (r *CashRepo) CreateShift(ctx context.Context, s *cash.Shift) error {
	return r.Insert(ctx, shiftTable, shiftColumns, s)
}

func (r *CashRepo) GetShift(ctx context.Context, sid id.ID) (*cash.Shift, error) {
	var s cash.Shift
	if err := r.Get(ctx, &s, r.shiftSelect().Where(sq.Eq{"id": sid}), "shift", sid); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CashRepo) GetShiftForUpdate(ctx context.Context, sid id.ID) (*cash.Shift, error) {
	var s cash.Shift
	q := r.shiftSelect().Where(sq.Eq{"id": sid}).Suffix("FOR UPDATE")
	if err := r.Get(ctx, &s, q, "shift", sid); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CashRepo) UpdateShift(ctx context.Context, s *cash.Shift) error {
	var cols []string
	for _, c := range shiftColumns {
		if c != "id" && c != "version" {
			cols = append(cols, c)
		}
	}
	q := postgres.UpdateStruct(shiftTable, cols, s).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": s.ID})
	return r.ExecOne(ctx, q, "shift", s.ID)
}

func (r *CashRepo) FindOpenShift(ctx context.Context) (*cash.Shift, error) {
	return r.findOpen(ctx, r.shiftSelect())
}

func (r *CashRepo) FindOpenShiftByEmployee(ctx context.Context, employeeID id.ID) (*cash.Shift, error) {
	return r.findOpen(ctx, r.shiftSelect().Where(sq.Eq{"employee_id": employeeID}))
}

// findOpen returns the earliest opened shift that is still open, or nil.
func (r *CashRepo) findOpen(ctx context.Context, q sq.SelectBuilder) (*cash.Shift, error) {
	var s cash.Shift
	q = q.Where(sq.Eq{"is_closed": false}).OrderBy("opened_at", "id").Limit(1)
	if err := r.Get(ctx, &s, q, "shift", "open"); err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *CashRepo) CreateTransaction(ctx context.Context, t *cash.Transaction) error {
	return r.Insert(ctx, transactionTable, transactionColumns, t)
}

func (r *CashRepo) ListTransactions(ctx context.Context, shiftID id.ID) ([]cash.Transaction, error) {
	var out []cash.Transaction
	q := postgres.Builder().Select(transactionColumns...).From(transactionTable).
		Where(sq.Eq{"shift_id": shiftID}).
		OrderBy("created_at", "id")
	if err := r.Select(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}
