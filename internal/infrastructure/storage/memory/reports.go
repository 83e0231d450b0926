package memory

import (
	"context"
	"slices"

	"restoledger/internal/core/entity"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/reports"
)

// ReportRepo implements reports.Repository over the movement journal.
type ReportRepo struct{ s *Store }

var _ reports.Repository = (*ReportRepo)(nil)

func (r *ReportRepo) Turnover(ctx context.Context, filter reports.TurnoverFilter) ([]reports.TurnoverRow, error) {
	defer r.s.read(ctx)()

	rows := make(map[entity.BalanceKey]*reports.TurnoverRow)
	for _, m := range r.s.st.movements {
		if !m.Period.Before(filter.To) {
			continue
		}
		if filter.WarehouseID != nil && m.WarehouseID != *filter.WarehouseID {
			continue
		}
		key := entity.BalanceKey{WarehouseID: m.WarehouseID, IngredientID: m.IngredientID}
		row, ok := rows[key]
		if !ok {
			row = &reports.TurnoverRow{
				WarehouseID:  m.WarehouseID,
				IngredientID: m.IngredientID,
				Opening:      types.Zero(),
				Receipt:      types.Zero(),
				Expense:      types.Zero(),
			}
			rows[key] = row
		}

		switch {
		case m.Period.Before(filter.From):
			row.Opening = row.Opening.Add(m.SignedQuantity())
		case m.RecordType == entity.RecordTypeReceipt:
			row.Receipt = row.Receipt.Add(m.Quantity)
		default:
			row.Expense = row.Expense.Add(m.Quantity)
		}
	}

	out := make([]reports.TurnoverRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	slices.SortFunc(out, func(a, b reports.TurnoverRow) int {
		if c := compareIDs(a.WarehouseID, b.WarehouseID); c != 0 {
			return c
		}
		return compareIDs(a.IngredientID, b.IngredientID)
	})
	return out, nil
}
