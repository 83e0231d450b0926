package document_repo

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/id"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/infrastructure/storage/postgres"
)

func TestLineColumns(t *testing.T) {
	// insertLines writes values in this order.
	assert.Equal(t, []string{"line_id", "line_no", "ingredient_id", "quantity", "unit_price"}, lineColumns)
}

func TestMarkProcessed_Statement(t *testing.T) {
	doc := movement.NewDocument(movement.DocTypeWriteOff)
	doc.Number = "WO-2024-00001"
	doc.MarkProcessed()

	query, args, err := postgres.UpdateStruct(documentTable, []string{"number", "is_processed", "processed_at", "updated_at", "version"}, doc).
		Where(sq.Eq{"id": doc.ID}).
		ToSql()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE stock_documents SET number = $1, is_processed = $2, processed_at = $3, updated_at = $4, version = $5 WHERE id = $6", query)
	assert.Equal(t, "WO-2024-00001", args[0])
	assert.Equal(t, true, args[1])
	assert.Equal(t, 2, args[4])
}

func TestListByOrder_Query(t *testing.T) {
	orderID := id.New()
	r := &DocumentRepo{}

	query, _, err := r.baseSelect().Where(sq.Eq{"order_id": orderID}).OrderBy("id").ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM stock_documents WHERE order_id = $1 ORDER BY id")
	assert.Contains(t, query, "SELECT id, version, created_at")
}
