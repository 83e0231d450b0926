package handlers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/tx"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/domain/catalogs/warehouse"
	"restoledger/internal/infrastructure/http/v1/dto"
)

// CatalogHandler maintains warehouses, ingredients, recipes, modifiers and
// auto-deduction rules.
type CatalogHandler struct {
	*BaseHandler
	warehouses  *warehouse.Service
	ingredients *ingredient.Service
	recipes     recipe.Repository
	txManager   tx.Manager
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(
	base *BaseHandler,
	warehouses *warehouse.Service,
	ingredients *ingredient.Service,
	recipes recipe.Repository,
	txManager tx.Manager,
) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: base,
		warehouses:  warehouses,
		ingredients: ingredients,
		recipes:     recipes,
		txManager:   txManager,
	}
}

// CreateWarehouse handles POST /catalog/warehouses
func (h *CatalogHandler) CreateWarehouse(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	linked, err := dto.ParseOptionalID("linkedWarehouseId", req.LinkedWarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	w := warehouse.NewWarehouse(req.Name)
	if req.IsProduction {
		w = warehouse.NewProductionCell(req.Name, linked)
	}
	if err := h.warehouses.Create(c.Request.Context(), w); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, w)
}

// ListWarehouses handles GET /catalog/warehouses
func (h *CatalogHandler) ListWarehouses(c *gin.Context) {
	items, err := h.warehouses.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

// CreateIngredient handles POST /catalog/ingredients
func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req dto.CreateIngredientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ing := ingredient.NewIngredient(req.Name, req.Unit)
	ing.CurrentCost = req.CurrentCost
	ing.IsSemiFinished = req.IsSemiFinished
	if err := h.ingredients.Create(c.Request.Context(), ing); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, ing)
}

// ListIngredients handles GET /catalog/ingredients
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	items, err := h.ingredients.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

// GetIngredient handles GET /catalog/ingredients/:id
func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	ingredientID, ok := h.ParamID(c)
	if !ok {
		return
	}
	ing, err := h.ingredients.GetByID(c.Request.Context(), ingredientID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ing)
}

// SetRecipe handles PUT /catalog/ingredients/:id/recipe
func (h *CatalogHandler) SetRecipe(c *gin.Context) {
	ingredientID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.SetRecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items := make([]recipe.SemiFinishedItem, 0, len(req.Items))
	for i, it := range req.Items {
		childID, err := parseItemIngredient(i, it)
		if err != nil {
			h.Error(c, err)
			return
		}
		if childID == ingredientID {
			h.Error(c, apperror.NewValidation("recipe cannot contain its own output").WithDetail("line", i+1))
			return
		}
		items = append(items, recipe.SemiFinishedItem{
			SemiFinishedID: ingredientID,
			LineNo:         i + 1,
			IngredientID:   childID,
			GrossQty:       it.GrossQty,
		})
	}

	ctx := c.Request.Context()
	err := h.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ing, err := h.ingredients.GetByID(ctx, ingredientID)
		if err != nil {
			return err
		}
		if !ing.IsSemiFinished {
			return apperror.NewNotManufacturable(ingredientID)
		}
		return h.recipes.SetSemiFinishedRecipe(ctx, ingredientID, items)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// CreateProduct handles POST /catalog/products with the product's tech card.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	warehouseID, err := dto.ParseOptionalID("productionWarehouseId", req.ProductionWarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	p := recipe.NewProduct(req.Name, warehouseID)
	if err := p.Validate(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}

	items := make([]recipe.TechCardItem, 0, len(req.Items))
	for i, it := range req.Items {
		ingredientID, err := parseItemIngredient(i, it)
		if err != nil {
			h.Error(c, err)
			return
		}
		items = append(items, recipe.TechCardItem{
			ProductID:    p.ID,
			LineNo:       i + 1,
			IngredientID: ingredientID,
			GrossQty:     it.GrossQty,
			NetQty:       it.NetQty,
			IsTakeaway:   it.IsTakeaway,
		})
	}

	ctx := c.Request.Context()
	err = h.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := h.recipes.CreateProduct(ctx, p); err != nil {
			return err
		}
		return h.recipes.SetTechCard(ctx, p.ID, items)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, gin.H{"product": p, "techCard": items})
}

// CreateModifier handles POST /catalog/modifiers
func (h *CatalogHandler) CreateModifier(c *gin.Context) {
	var req dto.CreateModifierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := recipe.NewModifier(req.Name, req.Price)
	var err error
	if m.IngredientID, err = dto.ParseOptionalID("ingredientId", req.IngredientID); err != nil {
		h.Error(c, err)
		return
	}
	if m.WarehouseID, err = dto.ParseOptionalID("warehouseId", req.WarehouseID); err != nil {
		h.Error(c, err)
		return
	}
	m.Quantity = req.Quantity

	if err := h.recipes.CreateModifier(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// CreateRule handles POST /catalog/rules
func (h *CatalogHandler) CreateRule(c *gin.Context) {
	var req dto.CreateRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	trigger := recipe.Trigger(req.Trigger)
	switch trigger {
	case recipe.TriggerAll, recipe.TriggerDelivery, recipe.TriggerPickup, recipe.TriggerInHouse:
	default:
		h.Error(c, apperror.NewValidation("unknown trigger").WithDetail("trigger", req.Trigger))
		return
	}
	if !req.Quantity.IsPositive() {
		h.Error(c, apperror.NewInvalidQuantity(req.Quantity))
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

	rule := &recipe.AutoDeductionRule{
		Name:         req.Name,
		Trigger:      trigger,
		IngredientID: ingredientID,
		Quantity:     req.Quantity,
		WarehouseID:  warehouseID,
		IsActive:     true,
	}
	rule.BaseEntity = entity.NewBaseEntity()
	if err := h.recipes.CreateRule(c.Request.Context(), rule); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rule)
}

// RegisterRoutes registers catalog routes. Writes need the manager role.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup, write gin.HandlerFunc) {
	catalog := rg.Group("/catalog")

	catalog.GET("/warehouses", h.ListWarehouses)
	catalog.POST("/warehouses", write, h.CreateWarehouse)

	catalog.GET("/ingredients", h.ListIngredients)
	catalog.GET("/ingredients/:id", h.GetIngredient)
	catalog.POST("/ingredients", write, h.CreateIngredient)
	catalog.PUT("/ingredients/:id/recipe", write, h.SetRecipe)

	catalog.POST("/products", write, h.CreateProduct)
	catalog.POST("/modifiers", write, h.CreateModifier)
	catalog.POST("/rules", write, h.CreateRule)
}

func parseItemIngredient(i int, it dto.RecipeItem) (id.ID, error) {
	ingredientID, err := dto.ParseID(fmt.Sprintf("items[%d].ingredientId", i), it.IngredientID)
	if err != nil {
		return id.ID{}, err
	}
	if !it.GrossQty.IsPositive() {
		return id.ID{}, apperror.NewInvalidQuantity(it.GrossQty).WithDetail("line", i+1)
	}
	return ingredientID, nil
}
