package recipe

import (
	"net/http"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/store"

	"github.com/gin-gonic/gin"
)

// IngredientHandler 食材庫存處理器
type IngredientHandler struct {
	store store.IngredientStore
}

// NewIngredientHandler 建立食材庫存處理器
func NewIngredientHandler(st store.IngredientStore) *IngredientHandler {
	return &IngredientHandler{store: st}
}

// IngredientRequest 新增食材請求
type IngredientRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Category string `json:"category,omitempty"`
}

// List 列出庫存
func (h *IngredientHandler) List(c *gin.Context) {
	items, err := h.store.ListIngredients(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": items})
}

// Add 新增食材
func (h *IngredientHandler) Add(c *gin.Context) {
	var req IngredientRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	item, err := h.store.AddIngredient(c.Request.Context(), middleware.UserID(c), store.Ingredient{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Category: req.Category,
	})
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Remove 移除食材
func (h *IngredientHandler) Remove(c *gin.Context) {
	if err := h.store.RemoveIngredient(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
