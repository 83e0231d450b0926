// Package relay delivers outbox messages to subscribers outside the ledger.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"restoledger/internal/core/id"
	"restoledger/internal/infrastructure/storage/postgres"
	"restoledger/pkg/logger"
)

// DefaultChannelPrefix prefixes the Redis channel of every event type.
const DefaultChannelPrefix = "restoledger.events."

// Envelope is the wire form of a relayed event.
type Envelope struct {
	ID            id.ID           `json:"id"`
	AggregateType string          `json:"aggregateType"`
	AggregateID   id.ID           `json:"aggregateId"`
	EventType     string          `json:"eventType"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// NewEnvelope wraps an outbox message.
func NewEnvelope(msg *postgres.OutboxMessage) Envelope {
	payload := json.RawMessage(msg.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return Envelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       payload,
		CreatedAt:     msg.CreatedAt,
	}
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisHandler publishes each message on a per-event-type Redis channel.
type RedisHandler struct {
	client redisPublisher
	prefix string
}

var _ postgres.OutboxHandler = (*RedisHandler)(nil)

// NewRedisHandler creates a handler publishing through client.
func NewRedisHandler(client redisPublisher, prefix string) *RedisHandler {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisHandler{client: client, prefix: prefix}
}

// Channel returns the channel an event type is published on.
func (h *RedisHandler) Channel(eventType string) string {
	return h.prefix + eventType
}

// Handle implements postgres.OutboxHandler.
func (h *RedisHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	body, err := json.Marshal(NewEnvelope(msg))
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	receivers, err := h.client.Publish(ctx, h.Channel(msg.EventType), body).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.EventType, err)
	}
	logger.Debug(ctx, "event relayed", "message_id", msg.ID, "event_type", msg.EventType, "receivers", receivers)
	return nil
}

// LogHandler only logs messages. Used when no Redis is configured.
type LogHandler struct {
	log *logger.Logger
}

// NewLogHandler creates a logging handler.
func NewLogHandler(log *logger.Logger) *LogHandler {
	return &LogHandler{log: log}
}

// Handle implements postgres.OutboxHandler.
func (h *LogHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	h.log.WithContext(ctx).Infow("ledger event",
		"message_id", msg.ID,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"event_type", msg.EventType,
		"payload", string(msg.Payload),
	)
	return nil
}
