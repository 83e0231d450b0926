// Package audit provides helpers that stamp the acting employee onto ledger records.
package audit

import (
	"context"

	appctx "restoledger/internal/core/context"
	"restoledger/internal/core/entity"
)

// SystemActor is recorded when no employee is attached to the request.
const SystemActor = "system"

// Actor returns the acting employee id from ctx, or SystemActor.
func Actor(ctx context.Context) string {
	if userID := appctx.GetUserID(ctx); userID != "" {
		return userID
	}
	return SystemActor
}

// EnrichCreatedBy sets CreatedBy on a new document if it is still empty.
func EnrichCreatedBy(ctx context.Context, doc *entity.BaseDocument) {
	if doc.CreatedBy == "" {
		doc.CreatedBy = Actor(ctx)
	}
}
