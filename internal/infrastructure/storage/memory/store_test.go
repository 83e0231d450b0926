package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/domain/events"
	"restoledger/internal/infrastructure/storage/memory"
)

func movementFor(recorderID id.ID, qty int64) entity.StockMovement {
	return entity.NewStockMovement(recorderID, "supply", time.Now().UTC(), entity.RecordTypeReceipt,
		id.New(), id.New(), decimal.NewFromInt(qty), decimal.Zero)
}

func TestTxManager_RollbackTruncatesLogs(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	txm := memory.NewTxManager(store)
	stock := store.Stock()
	recorder := id.New()

	require.NoError(t, txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return stock.CreateMovements(ctx, []entity.StockMovement{movementFor(recorder, 1)})
	}))

	boom := errors.New("boom")
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := stock.CreateMovements(ctx, []entity.StockMovement{movementFor(recorder, 2), movementFor(recorder, 3)}); err != nil {
			return err
		}
		if err := store.Events().Publish(ctx, events.Event{EventType: events.DocumentProcessed}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := stock.GetMovementsByRecorder(ctx, recorder)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.Empty(t, store.Events().All())

	// Appends after a rollback reuse the truncated log without resurrecting
	// the discarded rows.
	require.NoError(t, txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return stock.CreateMovements(ctx, []entity.StockMovement{movementFor(recorder, 4)})
	}))
	got, err = stock.GetMovementsByRecorder(ctx, recorder)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[1].Quantity.Equal(decimal.NewFromInt(4)))
}
