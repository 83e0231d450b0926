package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"restoledger/internal/domain/documents/inventory"
	"restoledger/internal/infrastructure/http/v1/dto"
	"restoledger/internal/infrastructure/http/v1/middleware"
)

// InventoryHandler serves stock counts.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// Prepare handles POST /inventory/counts
func (h *InventoryHandler) Prepare(c *gin.Context) {
	var req dto.PrepareCountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	warehouseID, err := dto.ParseID("warehouseId", req.WarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.PrepareCount(c.Request.Context(), warehouseID, req.Comment)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Record handles PUT /inventory/counts/:id/lines
func (h *InventoryHandler) Record(c *gin.Context) {
	countID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.RecordCountsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines := make([]inventory.CountLine, 0, len(req.Lines))
	for i, l := range req.Lines {
		ingredientID, err := dto.ParseID(fmt.Sprintf("lines[%d].ingredientId", i), l.IngredientID)
		if err != nil {
			h.Error(c, err)
			return
		}
		lines = append(lines, inventory.CountLine{IngredientID: ingredientID, Counted: l.Counted})
	}

	doc, err := h.service.RecordCounts(c.Request.Context(), countID, lines)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Reconcile handles POST /inventory/counts/:id/reconcile
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	countID, ok := h.ParamID(c)
	if !ok {
		return
	}

	res, err := h.service.Reconcile(c.Request.Context(), countID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// RegisterRoutes registers inventory routes.
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	counts := rg.Group("/inventory/counts")
	counts.POST("", h.Prepare)
	counts.PUT("/:id/lines", h.Record)
	counts.POST("/:id/reconcile", middleware.RequireRole(RoleManager), h.Reconcile)
}
