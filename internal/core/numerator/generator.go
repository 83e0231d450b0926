package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
// Implementations live in pkg/numerator (postgres) and the in-memory store.
type Generator interface {
	// GetNextNumber generates the next document number.
	// Pattern: PREFIX-YEAR-XXXXX (e.g., SUP-2026-00001)
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
}
