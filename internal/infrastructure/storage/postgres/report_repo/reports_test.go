package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/id"
	"restoledger/internal/domain/reports"
)

func TestTurnoverQuery(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	wh := id.New()

	sql, args, err := turnoverQuery(reports.TurnoverFilter{From: from, To: to, WarehouseID: &wh}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FILTER (WHERE period < $1), 0) AS opening")
	assert.Contains(t, sql, "FILTER (WHERE period >= $2 AND record_type = 'receipt'), 0) AS receipt")
	assert.Contains(t, sql, "FROM stock_movements WHERE period < $4 AND warehouse_id = $5")
	assert.Contains(t, sql, "GROUP BY warehouse_id, ingredient_id ORDER BY warehouse_id, ingredient_id")
	assert.Equal(t, []any{from, from, from, to, wh}, args)
}

func TestTurnoverQuery_AllWarehouses(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := turnoverQuery(reports.TurnoverFilter{From: from, To: from.Add(time.Hour)}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "warehouse_id =")
	assert.Len(t, args, 4)
}
