package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/klauspost/compress/zstd"

	appctx "restoledger/internal/core/context"
	"restoledger/internal/core/id"
	"restoledger/internal/domain/events"
)

// CompressionAlgo specifies how an audit payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which entries are compressed.
const DefaultCompressThreshold = 10 * 1024

// AuditEntry is a row of sys_audit.
type AuditEntry struct {
	ID                id.ID           `db:"id" json:"id"`
	EntityType        string          `db:"entity_type" json:"entityType"`
	EntityID          id.ID           `db:"entity_id" json:"entityId"`
	Action            string          `db:"action" json:"action"`
	UserID            string          `db:"user_id" json:"userId,omitempty"`
	Changes           json.RawMessage `db:"changes" json:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed" json:"-"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo" json:"-"`
	RequestID         string          `db:"request_id" json:"requestId,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
}

var auditColumns = []string{
	"id", "entity_type", "entity_id", "action", "user_id",
	"changes", "changes_compressed", "compression_algo", "request_id", "created_at",
}

// AuditLog keeps a durable trail of every ledger event. It implements
// events.Publisher so it can sit next to the outbox.
type AuditLog struct {
	Repo
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ events.Publisher = (*AuditLog)(nil)

// NewAuditLog creates an audit log.
func NewAuditLog(txManager *TxManager) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditLog{
		Repo:              NewRepo(txManager),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// WithCompressThreshold overrides the compression threshold in bytes.
func (a *AuditLog) WithCompressThreshold(n int) *AuditLog {
	a.compressThreshold = n
	return a
}

// Publish implements events.Publisher.
func (a *AuditLog) Publish(ctx context.Context, event events.Event) error {
	changes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	return a.Log(ctx, AuditEntry{
		EntityType: event.AggregateType,
		EntityID:   event.AggregateID,
		Action:     event.EventType,
		Changes:    changes,
	})
}

// Log records an entry, filling the actor and request from ctx.
func (a *AuditLog) Log(ctx context.Context, entry AuditEntry) error {
	if entry.UserID == "" {
		if user := appctx.GetUser(ctx); user != nil {
			entry.UserID = user.UserID
		}
	}
	if entry.RequestID == "" {
		entry.RequestID = appctx.GetRequestID(ctx)
	}
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	a.compress(&entry)
	return a.Insert(ctx, "sys_audit", auditColumns, entry)
}

func (a *AuditLog) compress(entry *AuditEntry) {
	entry.CompressionAlgo = CompressionNone
	if len(entry.Changes) > a.compressThreshold {
		entry.ChangesCompressed = a.encoder.EncodeAll(entry.Changes, nil)
		entry.Changes = nil
		entry.CompressionAlgo = CompressionZstd
	}
}

func (a *AuditLog) decompress(entry *AuditEntry) error {
	if entry.CompressionAlgo != CompressionZstd || len(entry.ChangesCompressed) == 0 {
		return nil
	}
	raw, err := a.decoder.DecodeAll(entry.ChangesCompressed, nil)
	if err != nil {
		return fmt.Errorf("decompress changes: %w", err)
	}
	entry.Changes = raw
	entry.ChangesCompressed = nil
	return nil
}

// History returns the newest entries of one entity, decompressed.
func (a *AuditLog) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]AuditEntry, error) {
	q := psql.Select(auditColumns...).
		From("sys_audit").
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	var entries []AuditEntry
	if err := a.Select(ctx, &entries, q); err != nil {
		return nil, fmt.Errorf("audit history: %w", err)
	}
	for i := range entries {
		if err := a.decompress(&entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
