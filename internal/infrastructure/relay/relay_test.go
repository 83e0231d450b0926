package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/id"
	"restoledger/internal/infrastructure/storage/postgres"
	"restoledger/pkg/logger"
)

type fakeRedis struct {
	channel string
	body    []byte
	err     error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.channel = channel
	f.body = message.([]byte)
	cmd.SetVal(1)
	return cmd
}

func testMessage() *postgres.OutboxMessage {
	return &postgres.OutboxMessage{
		ID:            id.New(),
		AggregateType: "shift",
		AggregateID:   id.New(),
		EventType:     "ShiftClosed",
		Payload:       []byte(`{"difference":"-5"}`),
		CreatedAt:     time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC),
	}
}

func TestRedisHandler_PublishesEnvelope(t *testing.T) {
	client := &fakeRedis{}
	h := NewRedisHandler(client, "")
	msg := testMessage()

	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, "restoledger.events.ShiftClosed", client.channel)

	var env Envelope
	require.NoError(t, json.Unmarshal(client.body, &env))
	assert.Equal(t, msg.ID, env.ID)
	assert.Equal(t, msg.AggregateID, env.AggregateID)
	assert.JSONEq(t, `{"difference":"-5"}`, string(env.Payload))
}

func TestRedisHandler_PropagatesError(t *testing.T) {
	h := NewRedisHandler(&fakeRedis{err: errors.New("connection refused")}, "pos.")

	err := h.Handle(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ShiftClosed")
	assert.Equal(t, "pos.ShiftClosed", h.Channel("ShiftClosed"))
}

func TestNewEnvelope_EmptyPayload(t *testing.T) {
	msg := testMessage()
	msg.Payload = nil

	env := NewEnvelope(msg)
	assert.Equal(t, "null", string(env.Payload))
}

func TestLogHandler_NeverFails(t *testing.T) {
	h := NewLogHandler(logger.Nop())
	assert.NoError(t, h.Handle(context.Background(), testMessage()))
}
