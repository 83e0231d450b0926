package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	sq "github.com/Masterminds/squirrel"

	"restoledger/internal/core/apperror"
)

// IdempotencyStatus represents the state of an idempotent operation.
type IdempotencyStatus string

const (
	IdempotencyStatusPending IdempotencyStatus = "pending"
	IdempotencyStatusSuccess IdempotencyStatus = "success"
	IdempotencyStatusFailed  IdempotencyStatus = "failed"
)

const idempotencyTable = "sys_idempotency"

// stalePending is how long a pending key may sit before another request reclaims it.
const stalePending = time.Minute

// IdempotencyRecord stores the result of an idempotent operation.
type IdempotencyRecord struct {
	Key         string            `db:"idempotency_key"`
	UserID      string            `db:"user_id"`
	Operation   string            `db:"operation"`
	Status      IdempotencyStatus `db:"status"`
	RequestHash string            `db:"request_hash"`
	Response    []byte            `db:"response"`
	StatusCode  int               `db:"response_status"`
	ContentType string            `db:"response_content_type"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
	ExpiresAt   time.Time         `db:"expires_at"`
}

// IdempotencyReplay is the cached HTTP response for replay.
type IdempotencyReplay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IdempotencyStore keeps retried ledger requests (apply, handover, close)
// from running twice.
type IdempotencyStore struct {
	Repo
	ttl time.Duration
	now func() time.Time
}

// NewIdempotencyStore creates a new idempotency store.
func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{Repo: NewRepo(txManager), ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// AcquireKey claims key for a request. It returns a replay when the request
// already finished, and CONFLICT when it is in flight or the key was used for
// a different request.
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*IdempotencyReplay, error) {
	now := s.now()

	ins := psql.Insert(idempotencyTable).
		Columns("idempotency_key", "user_id", "operation", "status", "request_hash", "created_at", "updated_at", "expires_at").
		Values(key, userID, operation, IdempotencyStatusPending, requestHash, now, now, now.Add(s.ttl)).
		Suffix("ON CONFLICT (idempotency_key) DO NOTHING")
	tag, err := s.Exec(ctx, ins)
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil, nil
	}

	var record IdempotencyRecord
	q := psql.Select("*").From(idempotencyTable).Where(sq.Eq{"idempotency_key": key})
	if err := s.Get(ctx, &record, q, "idempotency key", key); err != nil {
		return nil, err
	}
	return s.resolve(ctx, record, userID, operation, requestHash)
}

func (s *IdempotencyStore) resolve(ctx context.Context, record IdempotencyRecord, userID, operation, requestHash string) (*IdempotencyReplay, error) {
	if record.UserID != userID || record.Operation != operation || record.RequestHash != requestHash {
		return nil, apperror.NewConflict("idempotency key reused for a different request").
			WithDetail("idempotency_key", record.Key).
			WithDetail("stored_operation", record.Operation).
			WithDetail("request_operation", operation)
	}

	switch record.Status {
	case IdempotencyStatusSuccess, IdempotencyStatusFailed:
		return replayOf(record), nil
	case IdempotencyStatusPending:
		if s.now().Sub(record.UpdatedAt) <= stalePending {
			return nil, apperror.NewConflict("request with this idempotency key is in progress").
				WithDetail("idempotency_key", record.Key)
		}
		upd := psql.Update(idempotencyTable).
			Set("updated_at", s.now()).
			Where(sq.Eq{"idempotency_key": record.Key, "status": IdempotencyStatusPending})
		if _, err := s.Exec(ctx, upd); err != nil {
			return nil, fmt.Errorf("reclaim stale key: %w", err)
		}
	}
	return nil, nil
}

func replayOf(record IdempotencyRecord) *IdempotencyReplay {
	replay := &IdempotencyReplay{StatusCode: record.StatusCode, ContentType: record.ContentType, Body: record.Response}
	if replay.StatusCode == 0 {
		replay.StatusCode = http.StatusOK
	}
	if replay.ContentType == "" {
		replay.ContentType = "application/json"
	}
	return replay
}

// CompleteKey stores a successful response for replay.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(ctx, key, IdempotencyStatusSuccess, statusCode, contentType, response)
}

// FailKey stores an error response for replay.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(ctx, key, IdempotencyStatusFailed, statusCode, contentType, response)
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, status IdempotencyStatus, statusCode int, contentType string, response any) error {
	var body []byte
	if response != nil {
		b, err := json.Marshal(response)
		if err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
		body = b
	}
	q := psql.Update(idempotencyTable).
		Set("status", status).
		Set("response", body).
		Set("response_status", statusCode).
		Set("response_content_type", contentType).
		Set("updated_at", s.now()).
		Where(sq.Eq{"idempotency_key": key})
	_, err := s.Exec(ctx, q)
	return err
}

// CleanupExpired removes expired idempotency records.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.Exec(ctx, psql.Delete(idempotencyTable).Where(sq.Lt{"expires_at": s.now()}))
	if err != nil {
		return 0, fmt.Errorf("cleanup idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
