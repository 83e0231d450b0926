package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/domain/cash"
	"restoledger/internal/infrastructure/http/v1/dto"
	"restoledger/internal/infrastructure/http/v1/middleware"
)

// RoleManager may close shifts, reconcile counts and edit the catalog.
const RoleManager = string(cash.RoleManager)

// ShiftHandler serves cash shifts and staff cash balances.
type ShiftHandler struct {
	*BaseHandler
	cash *cash.Service
}

// NewShiftHandler creates a shift handler.
func NewShiftHandler(base *BaseHandler, cashSvc *cash.Service) *ShiftHandler {
	return &ShiftHandler{BaseHandler: base, cash: cashSvc}
}

// CreateEmployee handles POST /employees
func (h *ShiftHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	e := cash.NewEmployee(req.Name, cash.Role(req.Role))
	if err := h.cash.CreateEmployee(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// GetEmployee handles GET /employees/:id
func (h *ShiftHandler) GetEmployee(c *gin.Context) {
	employeeID, ok := h.ParamID(c)
	if !ok {
		return
	}
	e, err := h.cash.GetEmployee(c.Request.Context(), employeeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// BalanceHistory handles GET /employees/:id/balance-history
func (h *ShiftHandler) BalanceHistory(c *gin.Context) {
	employeeID, ok := h.ParamID(c)
	if !ok {
		return
	}
	items, err := h.cash.BalanceHistory(c.Request.Context(), employeeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

// Open handles POST /shifts
func (h *ShiftHandler) Open(c *gin.Context) {
	var req dto.OpenShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}
	employeeID, err := dto.ParseID("employeeId", req.EmployeeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	shift, err := h.cash.OpenShift(c.Request.Context(), employeeID, req.OpeningFloat)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, shift)
}

// Current handles GET /shifts/current
func (h *ShiftHandler) Current(c *gin.Context) {
	shift, err := h.cash.CurrentShift(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, shift)
}

// Get handles GET /shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	shiftID, ok := h.ParamID(c)
	if !ok {
		return
	}
	shift, err := h.cash.GetShift(c.Request.Context(), shiftID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, shift)
}

// Close handles POST /shifts/:id/close
func (h *ShiftHandler) Close(c *gin.Context) {
	shiftID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.CloseShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	stats, err := h.cash.CloseShift(c.Request.Context(), shiftID, req.ActualCash)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}

// Statistics handles GET /shifts/:id/statistics
func (h *ShiftHandler) Statistics(c *gin.Context) {
	shiftID, ok := h.ParamID(c)
	if !ok {
		return
	}
	stats, err := h.cash.ShiftStatistics(c.Request.Context(), shiftID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}

// AddTransaction handles POST /shifts/:id/transactions
func (h *ShiftHandler) AddTransaction(c *gin.Context) {
	shiftID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.CashTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	txnType := cash.TransactionType(req.Type)
	if txnType != cash.TransactionIn && txnType != cash.TransactionOut {
		h.Error(c, apperror.NewValidation("type must be in or out").WithDetail("type", req.Type))
		return
	}

	txn, err := h.cash.AddTransaction(c.Request.Context(), shiftID, txnType, req.Amount, req.Comment)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, txn)
}

// Handover handles POST /shifts/:id/handover
func (h *ShiftHandler) Handover(c *gin.Context) {
	shiftID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.HandoverRequest
	if !h.BindJSON(c, &req) {
		return
	}
	employeeID, err := dto.ParseID("employeeId", req.EmployeeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	orderIDs := make([]id.ID, 0, len(req.OrderIDs))
	for i, raw := range req.OrderIDs {
		orderID, err := dto.ParseID(fmt.Sprintf("orderIds[%d]", i), raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		orderIDs = append(orderIDs, orderID)
	}

	res, err := h.cash.Handover(c.Request.Context(), shiftID, employeeID, orderIDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// RegisterRoutes registers shift and employee routes.
func (h *ShiftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	emp := rg.Group("/employees")
	emp.POST("", middleware.RequireRole(RoleManager), h.CreateEmployee)
	emp.GET("/:id", h.GetEmployee)
	emp.GET("/:id/balance-history", h.BalanceHistory)

	shifts := rg.Group("/shifts")
	shifts.POST("", h.Open)
	shifts.GET("/current", h.Current)
	shifts.GET("/:id", h.Get)
	shifts.POST("/:id/close", middleware.RequireRole(RoleManager), h.Close)
	shifts.GET("/:id/statistics", h.Statistics)
	shifts.POST("/:id/transactions", h.AddTransaction)
	shifts.POST("/:id/handover", h.Handover)
}
