// Package recipe 食譜目錄、推薦與食材庫存的 HTTP 處理器
package recipe

import (
	"net/http"
	"strings"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recorder 推薦請求計數
type Recorder interface {
	Recommendation()
}

// Handler 食譜處理器
type Handler struct {
	planner  *planner.Service
	recorder Recorder
}

// NewHandler 建立食譜處理器，recorder 可為 nil
func NewHandler(svc *planner.Service, recorder Recorder) *Handler {
	return &Handler{planner: svc, recorder: recorder}
}

// ListResponse 目錄查詢結果
type ListResponse struct {
	Recipes []recipe.Recipe `json:"recipes"`
	Total   int             `json:"total"`
}

// RecommendationResponse 推薦結果
type RecommendationResponse struct {
	Ingredients     []string                `json:"ingredients"`
	Recommendations []recipe.Recommendation `json:"recommendations"`
}

// filterFromQuery 由查詢參數組成篩選條件
func filterFromQuery(c *gin.Context) (recipe.Filter, error) {
	maxTime, err := handlers.QueryInt(c, "max_time", 0)
	if err != nil {
		return recipe.Filter{}, err
	}
	return recipe.Filter{
		Diet:       c.Query("diet"),
		MaxTime:    maxTime,
		Difficulty: c.Query("difficulty"),
		MealType:   c.Query("meal_type"),
		Search:     c.Query("search"),
		Exclude:    common.SplitCSV(c.Query("exclude")),
	}, nil
}

// List 列出目錄
func (h *Handler) List(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		handlers.Fail(c, err)
		return
	}

	recipes := h.planner.Catalog().List(f)
	c.JSON(http.StatusOK, ListResponse{Recipes: recipes, Total: len(recipes)})
}

// Get 取得單一食譜
func (h *Handler) Get(c *gin.Context) {
	r, ok := h.planner.Catalog().Get(c.Param("id"))
	if !ok {
		handlers.Fail(c, common.ErrRecipeNotFound)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Recommendations 依食材推薦食譜
// 未提供 ingredients 時使用使用者的食材庫存
func (h *Handler) Recommendations(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	limit, err := handlers.QueryInt(c, "limit", 0)
	if err != nil {
		handlers.Fail(c, err)
		return
	}

	user := middleware.UserID(c)
	ingredients := common.SplitCSV(c.Query("ingredients"))
	recs, err := h.planner.Recommendations(c.Request.Context(), user, ingredients, f, limit)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	if h.recorder != nil {
		h.recorder.Recommendation()
	}

	common.LogDebug("推薦食譜",
		zap.String("user", user),
		zap.String("ingredients", strings.Join(ingredients, ",")),
		zap.Int("results", len(recs)),
	)
	c.JSON(http.StatusOK, RecommendationResponse{
		Ingredients:     ingredients,
		Recommendations: recs,
	})
}
