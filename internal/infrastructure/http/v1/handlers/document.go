package handlers

import (
	"github.com/gin-gonic/gin"

	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/domain/production"
	"restoledger/internal/infrastructure/http/v1/dto"
)

// DocumentHandler serves stock movement documents and production runs.
type DocumentHandler struct {
	*BaseHandler
	documents  *movement.Processor
	production *production.Service
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler(base *BaseHandler, documents *movement.Processor, prod *production.Service) *DocumentHandler {
	return &DocumentHandler{BaseHandler: base, documents: documents, production: prod}
}

// Create handles POST /documents. The document is created and applied in one step.
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.documents.ProcessMovement(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Apply handles POST /documents/:id/apply for a stored unprocessed document.
func (h *DocumentHandler) Apply(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc, err := h.documents.Apply(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Get handles GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc, err := h.documents.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Produce handles POST /production
func (h *DocumentHandler) Produce(c *gin.Context) {
	var req dto.ProduceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ingredientID, err := dto.ParseID("ingredientId", req.IngredientID)
	if err != nil {
		h.Error(c, err)
		return
	}
	warehouseID, err := dto.ParseID("warehouseId", req.WarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.production.Produce(c.Request.Context(), ingredientID, req.Quantity, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, res)
}

// RegisterRoutes registers document routes.
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	docs.POST("", h.Create)
	docs.GET("/:id", h.Get)
	docs.POST("/:id/apply", h.Apply)

	rg.POST("/production", h.Produce)
}
