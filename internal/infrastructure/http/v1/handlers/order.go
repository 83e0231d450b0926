package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"restoledger/internal/core/apperror"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/domain/deduction"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/domain/orders"
	"restoledger/internal/infrastructure/http/v1/dto"
)

// OrderHandler serves order registration and the stock side of the order lifecycle.
type OrderHandler struct {
	*BaseHandler
	orders    *orders.Service
	deduction *deduction.Service
	documents *movement.Processor
	recipes   recipe.Repository
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(
	base *BaseHandler,
	orderSvc *orders.Service,
	deductionSvc *deduction.Service,
	documents *movement.Processor,
	recipes recipe.Repository,
) *OrderHandler {
	return &OrderHandler{
		BaseHandler: base,
		orders:      orderSvc,
		deduction:   deductionSvc,
		documents:   documents,
		recipes:     recipes,
	}
}

// Create handles POST /orders. Chosen modifiers are snapshotted onto the lines.
func (h *OrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o := orders.NewOrder(orders.Channel(req.Channel), orders.PaymentMethod(req.PaymentMethod))
	o.Number = req.Number

	var err error
	if o.CourierID, err = dto.ParseOptionalID("courierId", req.CourierID); err != nil {
		h.Error(c, err)
		return
	}
	if o.AcceptedByID, err = dto.ParseOptionalID("acceptedById", req.AcceptedByID); err != nil {
		h.Error(c, err)
		return
	}

	for i, l := range req.Lines {
		productID, err := dto.ParseID(fmt.Sprintf("lines[%d].productId", i), l.ProductID)
		if err != nil {
			h.Error(c, err)
			return
		}
		if _, err := h.recipes.GetProduct(ctx, productID); err != nil {
			h.Error(c, err)
			return
		}

		line := o.AddLine(productID, l.Quantity, l.Price)
		for j, raw := range l.ModifierIDs {
			modifierID, err := dto.ParseID(fmt.Sprintf("lines[%d].modifierIds[%d]", i, j), raw)
			if err != nil {
				h.Error(c, err)
				return
			}
			m, err := h.recipes.GetModifier(ctx, modifierID)
			if err != nil {
				h.Error(c, err)
				return
			}
			line.AddOns = append(line.AddOns, m.Snapshot())
			o.Total = o.Total.Add(m.Price.Mul(l.Quantity))
		}
	}

	if err := h.orders.Create(ctx, o); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, o)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}
	o, err := h.orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// Deduct handles POST /orders/:id/deduct
func (h *OrderHandler) Deduct(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}
	out, err := h.deduction.Deduct(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

// Reverse handles POST /orders/:id/reverse
func (h *OrderHandler) Reverse(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}
	out, err := h.deduction.Reverse(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

// Waste handles POST /orders/:id/waste: a cancelled order keeps its stock written off.
func (h *OrderHandler) Waste(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.deduction.MarkWaste(c.Request.Context(), orderID); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.SuccessResponse{Success: true})
}

// ChangeStatus handles POST /orders/:id/status
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.StatusChangeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	to := orders.Status(req.Status)
	switch to {
	case orders.StatusNew, orders.StatusAccepted, orders.StatusCooking,
		orders.StatusDelivering, orders.StatusCompleted, orders.StatusCancelled:
	default:
		h.Error(c, apperror.NewValidation("unknown status").WithDetail("status", req.Status))
		return
	}
	employeeID, err := dto.ParseOptionalID("employeeId", req.EmployeeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	out, err := h.deduction.OnStatusChange(c.Request.Context(), orderID, to, deduction.StatusChangeOptions{
		SkipReturn: req.SkipReturn,
		EmployeeID: employeeID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

// PrimeCost handles GET /orders/:id/prime-cost
func (h *OrderHandler) PrimeCost(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}
	cost, plan, err := h.deduction.PrimeCost(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.PrimeCostResponse{OrderID: orderID.String(), PrimeCost: cost, Plan: plan})
}

// Documents handles GET /orders/:id/documents
func (h *OrderHandler) Documents(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}
	docs, err := h.documents.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, docs, len(docs))
}

// RegisterRoutes registers order routes.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	o := rg.Group("/orders")
	o.POST("", h.Create)
	o.GET("/:id", h.Get)
	o.POST("/:id/deduct", h.Deduct)
	o.POST("/:id/reverse", h.Reverse)
	o.POST("/:id/waste", h.Waste)
	o.POST("/:id/status", h.ChangeStatus)
	o.GET("/:id/prime-cost", h.PrimeCost)
	o.GET("/:id/documents", h.Documents)
}
