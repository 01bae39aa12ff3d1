// Package planner 週計畫、營養報告與飲食偏好的 HTTP 處理器
package planner

import (
	"net/http"
	"strings"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/meal"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/core/week"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// Handler 週計畫處理器
type Handler struct {
	svc *planner.Service
}

// NewHandler 建立週計畫處理器
func NewHandler(svc *planner.Service) *Handler {
	return &Handler{svc: svc}
}

// PlanResponse 一週計畫
type PlanResponse struct {
	WeekKey string    `json:"weekKey"`
	Days    []string  `json:"days"`
	Plan    meal.Plan `json:"plan"`
}

// SelectionRequest 切換是否計入統計
type SelectionRequest struct {
	IsSelected *bool `json:"isSelected"`
}

// GenerateRequest 產生週計畫
type GenerateRequest struct {
	Diet string `json:"diet"`
}

// QuickAddRequest 快速加入，recipeId 可為數字或字串
type QuickAddRequest struct {
	RecipeID recipe.ID `json:"recipeId"`
}

func weekParam(c *gin.Context) (string, bool) {
	key, err := week.ParseKey(c.Param("weekKey"))
	if err != nil {
		handlers.Fail(c, common.ErrInvalidWeekKey.Wrap(err))
		return "", false
	}
	return key, true
}

func slotParam(c *gin.Context) (meal.Slot, bool) {
	slot, ok := meal.ParseSlot(strings.ToLower(c.Param("slot")))
	if !ok || !slot.Valid() {
		handlers.Fail(c, common.ErrInvalidSlot.WithMessage("invalid slot "+c.Param("slot")))
		return meal.Slot{}, false
	}
	return slot, true
}

func (h *Handler) respondPlan(c *gin.Context, key string, plan meal.Plan) {
	days, _ := week.Days(key)
	if plan == nil {
		plan = meal.Plan{}
	}
	c.JSON(http.StatusOK, PlanResponse{WeekKey: key, Days: days, Plan: plan})
}

// ListPlans 使用者所有週計畫
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.svc.Plans(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// GetPlan 讀取一週
func (h *Handler) GetPlan(c *gin.Context) {
	key, ok := weekParam(c)
	if !ok {
		return
	}
	plan, err := h.svc.Plan(c.Request.Context(), middleware.UserID(c), key)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	h.respondPlan(c, key, plan)
}

// ReplacePlan 取代整週
func (h *Handler) ReplacePlan(c *gin.Context) {
	key, ok := weekParam(c)
	if !ok {
		return
	}
	var plan meal.Plan
	if !handlers.BindJSON(c, &plan) {
		return
	}

	saved, err := h.svc.ReplacePlan(c.Request.Context(), middleware.UserID(c), key, plan)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	h.respondPlan(c, key, saved)
}

// ClearWeek 清空一週
func (h *Handler) ClearWeek(c *gin.Context) {
	key, ok := weekParam(c)
	if !ok {
		return
	}
	if err := h.svc.ClearWeek(c.Request.Context(), middleware.UserID(c), key); err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignSlot 指定某時段的餐點
// 請求體只有 recipeId 時從目錄帶入，否則視為自訂餐點
func (h *Handler) AssignSlot(c *gin.Context) {
	key, ok := weekParam(c)
	if !ok {
		return
	}
	slot, ok := slotParam(c)
	if !ok {
		return
	}
	var body map[string]any
	if !handlers.BindJSON(c, &body) {
		return
	}

	ctx := c.Request.Context()
	user := middleware.UserID(c)

	var (
		rec meal.Record
		err error
	)
	recipeID := strings.TrimSpace(cast.ToString(body["recipeId"]))
	if _, hasName := body["name"]; !hasName && recipeID != "" {
		rec, err = h.svc.AssignRecipe(ctx, user, key, slot.Day, slot.MealType, recipeID)
	} else {
		rec, err = h.svc.AssignMeal(ctx, user, key, slot.Day, slot.MealType, body)
	}
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot.String(), "meal": rec})
}

// SetSelection 切換是否計入營養統計
func (h *Handler) SetSelection(c *gin.Context) {
	key, ok := weekParam(c)
	if !ok {
		return
	}
	slot, ok := slotParam(c)
	if !ok {
		return
	}
	var req SelectionRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	if req.IsSelected == nil {
		handlers.Fail(c, common.ErrInvalidRequest.WithMessage("isSelected is required"))
		return
	}

	rec, err := h.svc.SetSelected(c.Request.Context(), middleware.UserID(c), key, slot.Day, slot.MealType, *req.IsSelected)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot.String(), "meal": rec})
}

// RemoveSlot 移除某時段的餐點
func (h *Handler) RemoveSlot(c *gin.Context) {
	key, ok := weekParam(c)
	if !ok {
		return
	}
	slot, ok := slotParam(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveMeal(c.Request.Context(), middleware.UserID(c), key, slot.Day, slot.MealType); err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Generate 依飲食類型隨機產生整週計畫
// diet 可由查詢參數或請求體指定，都沒有時使用偏好設定
func (h *Handler) Generate(c *gin.Context) {
	key, ok := weekParam(c)
	if !ok {
		return
	}
	var req GenerateRequest
	if c.Request.ContentLength != 0 && !handlers.BindJSON(c, &req) {
		return
	}
	diet := c.Query("diet")
	if diet == "" {
		diet = req.Diet
	}

	plan, err := h.svc.GeneratePlan(c.Request.Context(), middleware.UserID(c), key, diet)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	h.respondPlan(c, key, plan)
}

// QuickAdd 將食譜加入今天的對應時段
func (h *Handler) QuickAdd(c *gin.Context) {
	var req QuickAddRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	id := strings.TrimSpace(string(req.RecipeID))
	if id == "" {
		handlers.Fail(c, common.ErrInvalidRequest.WithMessage("recipeId is required"))
		return
	}

	res, err := h.svc.QuickAdd(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
