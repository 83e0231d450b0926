package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"restoledger/internal/core/id"
	"restoledger/internal/domain/events"
	"restoledger/pkg/logger"
)

// OutboxStatus is the delivery state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// MaxOutboxRetries is the number of failed deliveries before a message is parked.
const MaxOutboxRetries = 5

const outboxTable = "sys_outbox"

var outboxColumns = []string{
	"id", "aggregate_type", "aggregate_id", "event_type", "payload", "status",
	"retry_count", "last_error", "next_retry_at", "created_at", "published_at",
}

// OutboxMessage is a row of sys_outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	AggregateType string       `db:"aggregate_type"`
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"`
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

// OutboxPublisher writes ledger events to sys_outbox in the caller's transaction.
type OutboxPublisher struct {
	txManager *TxManager
}

var _ events.Publisher = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txManager: txManager}
}

// Publish implements events.Publisher. It must be called inside a transaction.
func (p *OutboxPublisher) Publish(ctx context.Context, event events.Event) error {
	t := p.txManager.GetTx(ctx)
	if t == nil {
		return fmt.Errorf("outbox publish requires transaction context")
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	query, args, err := psql.Insert(outboxTable).
		Columns("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "created_at").
		Values(id.New(), event.AggregateType, event.AggregateID, event.EventType, payload, OutboxStatusPending, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build outbox insert: %w", err)
	}
	if _, err := t.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// OutboxHandler delivers one message.
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxHandlerFunc adapts a function to OutboxHandler.
type OutboxHandlerFunc func(ctx context.Context, msg *OutboxMessage) error

// Handle implements OutboxHandler.
func (f OutboxHandlerFunc) Handle(ctx context.Context, msg *OutboxMessage) error {
	return f(ctx, msg)
}

// OutboxRelay delivers pending outbox messages. Several relays may run at
// once; SKIP LOCKED hands each message to one of them.
type OutboxRelay struct {
	txManager *TxManager
	batchSize int
	handler   OutboxHandler
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(txManager *TxManager, batchSize int, handler OutboxHandler) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{txManager: txManager, batchSize: batchSize, handler: handler}
}

// pendingQuery selects deliverable messages and locks them.
func (r *OutboxRelay) pendingQuery() sq.SelectBuilder {
	return psql.Select(outboxColumns...).
		From(outboxTable).
		Where(sq.Eq{"status": OutboxStatusPending}).
		Where(sq.Or{sq.Expr("next_retry_at IS NULL"), sq.Expr("next_retry_at <= NOW()")}).
		OrderBy("created_at").
		Limit(uint64(r.batchSize)).
		Suffix("FOR UPDATE SKIP LOCKED")
}

// ProcessBatch delivers up to batchSize messages and returns how many succeeded.
// Locks are held for the whole batch so no other relay picks the same rows.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	processed := 0
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		query, args, err := r.pendingQuery().ToSql()
		if err != nil {
			return fmt.Errorf("build outbox query: %w", err)
		}

		var messages []*OutboxMessage
		if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &messages, query, args...); err != nil {
			return fmt.Errorf("fetch outbox messages: %w", err)
		}

		for _, msg := range messages {
			if err := r.deliver(ctx, msg); err != nil {
				logger.Warn(ctx, "outbox delivery failed",
					"message_id", msg.ID, "event_type", msg.EventType,
					"retry_count", msg.RetryCount, "error", err)
				continue
			}
			processed++
		}
		return nil
	})
	return processed, err
}

func (r *OutboxRelay) deliver(ctx context.Context, msg *OutboxMessage) error {
	q := r.txManager.GetQuerier(ctx)

	if handleErr := r.handler.Handle(ctx, msg); handleErr != nil {
		status := OutboxStatusPending
		if msg.RetryCount+1 >= MaxOutboxRetries {
			status = OutboxStatusFailed
		}
		query, args, err := psql.Update(outboxTable).
			Set("retry_count", sq.Expr("retry_count + 1")).
			Set("last_error", handleErr.Error()).
			Set("next_retry_at", NextRetryAt(time.Now().UTC(), msg.RetryCount)).
			Set("status", status).
			Where(sq.Eq{"id": msg.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build retry update: %w", err)
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("record failed delivery: %w", err)
		}
		return handleErr
	}

	query, args, err := psql.Update(outboxTable).
		Set("status", OutboxStatusPublished).
		Set("published_at", time.Now().UTC()).
		Where(sq.Eq{"id": msg.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build publish update: %w", err)
	}
	_, err = q.Exec(ctx, query, args...)
	return err
}

// NextRetryAt returns when a message that failed retryCount times before is
// tried again: one more minute per previous failure.
func NextRetryAt(now time.Time, retryCount int) time.Time {
	return now.Add(time.Duration(retryCount+1) * time.Minute)
}

// MoveToDLQ moves parked messages to sys_outbox_dlq.
func (r *OutboxRelay) MoveToDLQ(ctx context.Context) (int64, error) {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		WITH moved AS (
			DELETE FROM sys_outbox
			WHERE status = $1 AND retry_count >= $2
			RETURNING *
		)
		INSERT INTO sys_outbox_dlq
		SELECT *, NOW() AS failed_at, last_error AS failure_reason FROM moved
	`, OutboxStatusFailed, MaxOutboxRetries)
	if err != nil {
		return 0, fmt.Errorf("move to DLQ: %w", err)
	}
	return result.RowsAffected(), nil
}
