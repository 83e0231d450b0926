package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/apperror"
)

func TestIdempotencyStore_Resolve(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := &IdempotencyStore{now: func() time.Time { return now }}
	ctx := context.Background()

	base := IdempotencyRecord{
		Key:         "k1",
		UserID:      "u1",
		Operation:   "POST /api/v1/shifts/:id/handover",
		RequestHash: "h1",
		UpdatedAt:   now,
	}

	t.Run("replays finished request", func(t *testing.T) {
		rec := base
		rec.Status = IdempotencyStatusSuccess
		rec.StatusCode = 201
		rec.Response = []byte(`{"id":"x"}`)

		replay, err := s.resolve(ctx, rec, "u1", rec.Operation, "h1")
		require.NoError(t, err)
		require.NotNil(t, replay)
		assert.Equal(t, 201, replay.StatusCode)
		assert.Equal(t, "application/json", replay.ContentType)
		assert.JSONEq(t, `{"id":"x"}`, string(replay.Body))
	})

	t.Run("rejects different request", func(t *testing.T) {
		rec := base
		rec.Status = IdempotencyStatusSuccess

		_, err := s.resolve(ctx, rec, "u1", rec.Operation, "other-hash")
		assert.True(t, apperror.Is(err, apperror.CodeConflict))
	})

	t.Run("in-flight request conflicts", func(t *testing.T) {
		rec := base
		rec.Status = IdempotencyStatusPending

		_, err := s.resolve(ctx, rec, "u1", rec.Operation, "h1")
		assert.True(t, apperror.Is(err, apperror.CodeConflict))
	})
}

func TestReplayOf_Defaults(t *testing.T) {
	replay := replayOf(IdempotencyRecord{Status: IdempotencyStatusFailed})
	assert.Equal(t, 200, replay.StatusCode)
	assert.Equal(t, "application/json", replay.ContentType)
}
