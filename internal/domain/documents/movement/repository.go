package movement

import (
	"context"

	"restoledger/internal/core/id"
)

// Repository defines persistence for movement documents.
type Repository interface {
	// Create inserts the header and its lines.
	Create(ctx context.Context, doc *Document) error

	// GetByID loads the document with lines.
	GetByID(ctx context.Context, id id.ID) (*Document, error)

	// GetForUpdate loads the document with lines, locking the header row.
	GetForUpdate(ctx context.Context, id id.ID) (*Document, error)

	// ReplaceLines rewrites the lines of an unprocessed document.
	ReplaceLines(ctx context.Context, doc *Document) error

	// MarkProcessed persists the processed flag and timestamp.
	MarkProcessed(ctx context.Context, doc *Document) error

	ListByOrder(ctx context.Context, orderID id.ID) ([]*Document, error)
	ListByReference(ctx context.Context, referenceID id.ID) ([]*Document, error)
}
