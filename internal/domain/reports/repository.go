package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// Turnover aggregates the movement journal. Rows come ordered by
	// warehouse and ingredient; Closing is left for the service to fill.
	Turnover(ctx context.Context, filter TurnoverFilter) ([]TurnoverRow, error)
}
