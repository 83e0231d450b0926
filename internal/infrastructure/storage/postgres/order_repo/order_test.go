package order_repo

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/domain/orders"
)

func TestAddOnColumns(t *testing.T) {
	// Create passes add-on values positionally after line_id and position.
	assert.Equal(t, []string{"modifier_id", "name", "price", "ingredient_id", "quantity", "warehouse_id"}, addOnColumns)
}

func TestOrderColumns_SkipLines(t *testing.T) {
	assert.NotContains(t, orderColumns, "lines")
	for _, col := range headerColumns {
		assert.Contains(t, orderColumns, col)
	}
}

func TestListOrphanedCash_Query(t *testing.T) {
	r := &OrderRepo{}
	query, args, err := r.baseSelect().
		Where(sq.Eq{"status": orders.StatusCompleted, "payment_method": orders.PaymentCash, "shift_id": nil}).
		Suffix("FOR UPDATE").
		ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "WHERE payment_method = $1 AND shift_id IS NULL AND status = $2 FOR UPDATE")
	assert.Equal(t, []any{orders.PaymentCash, orders.StatusCompleted}, args)
}
