package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"restoledger/internal/core/apperror"
	"restoledger/internal/domain/reports"
	"restoledger/internal/infrastructure/http/v1/dto"
)

// ReportHandler serves stock reports.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

// Turnover handles GET /reports/turnover?from=&to=&warehouseId=
// Dates are RFC 3339.
func (h *ReportHandler) Turnover(c *gin.Context) {
	from, err := parseTime("from", c.Query("from"))
	if err != nil {
		h.Error(c, err)
		return
	}
	to, err := parseTime("to", c.Query("to"))
	if err != nil {
		h.Error(c, err)
		return
	}
	warehouseID, err := dto.ParseOptionalID("warehouseId", c.Query("warehouseId"))
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.StockTurnover(c.Request.Context(), reports.TurnoverFilter{
		From:        from,
		To:          to,
		WarehouseID: warehouseID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Valuation handles GET /reports/valuation?warehouseId=
func (h *ReportHandler) Valuation(c *gin.Context) {
	warehouseID, err := dto.ParseID("warehouseId", c.Query("warehouseId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	report, err := h.service.StockValuation(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// RegisterRoutes registers report routes.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	r := rg.Group("/reports")
	r.GET("/turnover", h.Turnover)
	r.GET("/valuation", h.Valuation)
}

func parseTime(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, apperror.NewValidation(field+" is required").WithDetail("field", field)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid time").WithDetail("field", field)
	}
	return t.UTC(), nil
}
