package handlers

import (
	"github.com/gin-gonic/gin"

	"restoledger/internal/domain/registers/stock"
	"restoledger/internal/infrastructure/http/v1/dto"
)

// StockHandler serves the stock register.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Balances handles GET /stock/balances?warehouseId=
func (h *StockHandler) Balances(c *gin.Context) {
	warehouseID, err := dto.ParseID("warehouseId", c.Query("warehouseId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	items, err := h.service.WarehouseStock(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

// Balance handles GET /stock/balance?warehouseId=&ingredientId=
func (h *StockHandler) Balance(c *gin.Context) {
	warehouseID, err := dto.ParseID("warehouseId", c.Query("warehouseId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	ingredientID, err := dto.ParseID("ingredientId", c.Query("ingredientId"))
	if err != nil {
		h.Error(c, err)
		return
	}

	qty, err := h.service.Balance(c.Request.Context(), warehouseID, ingredientID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"warehouseId": warehouseID, "ingredientId": ingredientID, "quantity": qty})
}

// Negative handles GET /stock/negative
func (h *StockHandler) Negative(c *gin.Context) {
	items, err := h.service.NegativeBalances(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

// Movements handles GET /stock/movements?recorderId=
func (h *StockHandler) Movements(c *gin.Context) {
	recorderID, err := dto.ParseID("recorderId", c.Query("recorderId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	items, err := h.service.Movements(c.Request.Context(), recorderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

// RegisterRoutes registers stock register routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	s := rg.Group("/stock")
	s.GET("/balances", h.Balances)
	s.GET("/balance", h.Balance)
	s.GET("/negative", h.Negative)
	s.GET("/movements", h.Movements)
}
