package memory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/infrastructure/storage/memory"
)

func TestDocumentRepo_ReplaceLinesRejectsStaleCopy(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Documents()

	doc := movement.NewDocument(movement.DocTypeInventory)
	require.NoError(t, repo.Create(ctx, doc))

	first, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)

	first.AddLine(id.New(), decimal.NewFromInt(3), decimal.Zero)
	require.NoError(t, repo.ReplaceLines(ctx, first))

	second.AddLine(id.New(), decimal.NewFromInt(5), decimal.Zero)
	err = repo.ReplaceLines(ctx, second)
	assert.True(t, apperror.Is(err, apperror.CodeConflict))

	stored, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, 2, stored.Version)
}
