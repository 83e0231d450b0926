package handlers

import (
	"context"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/domain/events"
	"restoledger/internal/infrastructure/storage/postgres"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

var auditedAggregates = []string{
	events.AggregateDocument,
	events.AggregateOrder,
	events.AggregateShift,
	events.AggregateEmployee,
}

// AuditReader reads the audit trail of one aggregate.
type AuditReader interface {
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// AuditHandler exposes the audit trail. Only registered on Postgres.
type AuditHandler struct {
	*BaseHandler
	reader AuditReader
}

func NewAuditHandler(base *BaseHandler, reader AuditReader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, reader: reader}
}

// History handles GET /audit/:entityType/:id?limit=
func (h *AuditHandler) History(c *gin.Context) {
	entityType := c.Param("entityType")
	if !slices.Contains(auditedAggregates, entityType) {
		h.Error(c, apperror.NewValidation("unknown entity type").
			WithDetail("entityType", entityType).
			WithDetail("allowed", auditedAggregates))
		return
	}
	entityID, ok := h.ParamID(c)
	if !ok {
		return
	}

	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAuditLimit {
			h.Error(c, apperror.NewValidation("limit must be between 1 and 500").WithDetail("field", "limit"))
			return
		}
		limit = n
	}

	entries, err := h.reader.History(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, entries, len(entries))
}

func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup, handlers ...gin.HandlerFunc) {
	rg.GET("/audit/:entityType/:id", append(handlers, h.History)...)
}
