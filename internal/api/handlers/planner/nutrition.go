package planner

import (
	"net/http"
	"strings"
	"time"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/store"
	"meal-planner/internal/core/week"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// maxCalorieTarget 每日熱量目標上限
const maxCalorieTarget = 10000

// WeekNutrition 一週營養摘要
func (h *Handler) WeekNutrition(c *gin.Context) {
	key, ok := weekParam(c)
	if !ok {
		return
	}
	summary, err := h.svc.WeekSummary(c.Request.Context(), middleware.UserID(c), key)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DailyNutrition 指定日期的營養報告與飲食紀錄，date 預設為今天
func (h *Handler) DailyNutrition(c *gin.Context) {
	now := h.svc.Now()
	date := now
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		t, err := time.ParseInLocation(week.KeyLayout, raw, now.Location())
		if err != nil {
			handlers.Fail(c, common.ErrInvalidRequest.WithMessage("date must be YYYY-MM-DD"))
			return
		}
		date = t
	}

	report, err := h.svc.DailyNutrition(c.Request.Context(), middleware.UserID(c), date)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// FoodEntryRequest 新增飲食紀錄請求
type FoodEntryRequest struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	MealType string  `json:"mealType,omitempty"`
}

// AddFoodEntry 新增飲食紀錄
func (h *Handler) AddFoodEntry(c *gin.Context) {
	var req FoodEntryRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	entry, err := h.svc.LogFood(c.Request.Context(), middleware.UserID(c), store.FoodEntry{
		Name:     req.Name,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		MealType: req.MealType,
	})
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RemoveFoodEntry 刪除飲食紀錄
func (h *Handler) RemoveFoodEntry(c *gin.Context) {
	if err := h.svc.RemoveFoodEntry(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Profile 使用者偏好與資料統計
func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.svc.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PreferencesResponse 偏好與衍生目標
type PreferencesResponse struct {
	Preferences nutrition.Preferences `json:"preferences"`
	Targets     nutrition.Targets     `json:"targets"`
}

// PreferencesHandler 飲食偏好處理器
type PreferencesHandler struct {
	store store.PreferenceStore
}

// NewPreferencesHandler 建立飲食偏好處理器
func NewPreferencesHandler(st store.PreferenceStore) *PreferencesHandler {
	return &PreferencesHandler{store: st}
}

// Get 讀取偏好
func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.store.GetPreferences(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, PreferencesResponse{Preferences: prefs, Targets: prefs.Targets()})
}

// Put 更新偏好
func (h *PreferencesHandler) Put(c *gin.Context) {
	var prefs nutrition.Preferences
	if !handlers.BindJSON(c, &prefs) {
		return
	}
	if prefs.CalorieTarget < 0 || prefs.CalorieTarget > maxCalorieTarget {
		handlers.Fail(c, common.NewValidationError("calorieTarget must be between 0 and 10000"))
		return
	}

	user := middleware.UserID(c)
	if err := h.store.SetPreferences(c.Request.Context(), user, prefs); err != nil {
		handlers.Fail(c, err)
		return
	}
	saved, err := h.store.GetPreferences(c.Request.Context(), user)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, PreferencesResponse{Preferences: saved, Targets: saved.Targets()})
}
