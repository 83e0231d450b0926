// Package report_repo provides PostgreSQL report queries.
package report_repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"restoledger/internal/domain/reports"
	"restoledger/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	postgres.Repo
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{Repo: postgres.NewRepo(txm)}
}

const signedQuantity = "CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END"

// turnoverQuery aggregates every movement before filter.To in one pass:
// rows before From make up the opening balance.
func turnoverQuery(filter reports.TurnoverFilter) sq.SelectBuilder {
	q := postgres.Builder().
		Select("warehouse_id", "ingredient_id").
		Column(sq.Expr("COALESCE(SUM("+signedQuantity+") FILTER (WHERE period < ?), 0) AS opening", filter.From)).
		Column(sq.Expr("COALESCE(SUM(quantity) FILTER (WHERE period >= ? AND record_type = 'receipt'), 0) AS receipt", filter.From)).
		Column(sq.Expr("COALESCE(SUM(quantity) FILTER (WHERE period >= ? AND record_type = 'expense'), 0) AS expense", filter.From)).
		From("stock_movements").
		Where(sq.Lt{"period": filter.To}).
		GroupBy("warehouse_id", "ingredient_id").
		OrderBy("warehouse_id", "ingredient_id")
	if filter.WarehouseID != nil {
		q = q.Where(sq.Eq{"warehouse_id": *filter.WarehouseID})
	}
	return q
}

// Turnover implements reports.Repository.
func (r *ReportRepo) Turnover(ctx context.Context, filter reports.TurnoverFilter) ([]reports.TurnoverRow, error) {
	var rows []reports.TurnoverRow
	if err := r.Select(ctx, &rows, turnoverQuery(filter)); err != nil {
		return nil, fmt.Errorf("stock turnover: %w", err)
	}
	return rows, nil
}
