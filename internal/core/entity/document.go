package entity

import (
	"time"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
)

// Document is the base type for one-shot ledger transactions.
// A document is created unprocessed, filled with lines and processed exactly once.
type Document struct {
	BaseDocument

	// Number is the human-readable number (PREFIX-YEAR-NNNNN)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Processed flips false -> true once, together with all balance changes.
	Processed   bool       `db:"is_processed" json:"isProcessed"`
	ProcessedAt *time.Time `db:"processed_at" json:"processedAt,omitempty"`

	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new unprocessed Document with generated ID.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
	}
}

// EnsureNotProcessed returns ALREADY_PROCESSED for processed documents.
func (d *Document) EnsureNotProcessed() error {
	if d.Processed {
		return apperror.NewAlreadyProcessed(d.ID.String())
	}
	return nil
}

// MarkProcessed sets the one-way processed flag.
func (d *Document) MarkProcessed() {
	now := time.Now().UTC()
	d.Processed = true
	d.ProcessedAt = &now
	d.Touch()
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}
