package cash_repo

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/id"
)

func TestFindOpen_Query(t *testing.T) {
	r := &CashRepo{}
	employee := id.New()

	query, args, err := r.shiftSelect().
		Where(sq.Eq{"employee_id": employee}).
		Where(sq.Eq{"is_closed": false}).
		OrderBy("opened_at", "id").
		Limit(1).
		ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM cash_shifts WHERE employee_id = $1 AND is_closed = $2 ORDER BY opened_at, id LIMIT 1")
	assert.Len(t, args, 2)
}

func TestColumns(t *testing.T) {
	assert.Equal(t, "id", shiftColumns[0])
	assert.Contains(t, shiftColumns, "handovers")
	assert.Contains(t, transactionColumns, "employee_id")
	assert.Equal(t, []string{"id", "version", "name", "role", "cash_balance", "is_active"}, employeeColumns)
}
