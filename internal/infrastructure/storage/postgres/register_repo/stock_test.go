package register_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
)

func TestMovementRow_FollowsColumnOrder(t *testing.T) {
	wh, ing, doc := id.New(), id.New(), id.New()
	m := entity.NewStockMovement(doc, "supply", time.Now().UTC(), entity.RecordTypeReceipt,
		wh, ing, types.NewQuantity(5), types.MustMoney("20"))

	row := movementRow(m)
	require.Len(t, row, len(movementColumns))

	byColumn := make(map[string]any, len(row))
	for i, col := range movementColumns {
		byColumn[col] = row[i]
	}
	assert.Equal(t, m.LineID, byColumn["line_id"])
	assert.Equal(t, doc, byColumn["recorder_id"])
	assert.Equal(t, entity.RecordTypeReceipt, byColumn["record_type"])
	assert.Equal(t, wh, byColumn["warehouse_id"])
	assert.Equal(t, ing, byColumn["ingredient_id"])
	assert.True(t, types.NewQuantity(5).Equal(byColumn["quantity"].(types.Quantity)))
}

func TestBalanceColumns(t *testing.T) {
	assert.Equal(t, []string{"warehouse_id", "ingredient_id", "quantity", "updated_at"}, balanceColumns)
}
