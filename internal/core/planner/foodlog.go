package planner

import (
	"context"
	"fmt"
	"time"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/store"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// DailyNutrition 每日報告加上手動飲食紀錄
// 紀錄不計入 totals，totals 只來自週計畫
type DailyNutrition struct {
	nutrition.DailyReport
	Log []store.FoodEntry `json:"log"`
}

// Statistics 使用者資料統計
type Statistics struct {
	IngredientCount  int `json:"ingredientCount"`
	MealPlansCount   int `json:"mealPlansCount"`
	NutritionEntries int `json:"nutritionEntries"`
}

// Profile 使用者概況
type Profile struct {
	User        string                `json:"user"`
	Preferences nutrition.Preferences `json:"preferences"`
	Targets     nutrition.Targets     `json:"targets"`
	Statistics  Statistics            `json:"statistics"`
}

// DailyNutrition 指定日期的營養報告與全部飲食紀錄
func (s *Service) DailyNutrition(ctx context.Context, user string, date time.Time) (DailyNutrition, error) {
	report, err := s.DailyReport(ctx, user, date)
	if err != nil {
		return DailyNutrition{}, err
	}
	entries, err := s.FoodLog(ctx, user)
	if err != nil {
		return DailyNutrition{}, err
	}
	return DailyNutrition{DailyReport: report, Log: entries}, nil
}

// FoodLog 列出飲食紀錄
func (s *Service) FoodLog(ctx context.Context, user string) ([]store.FoodEntry, error) {
	entries, err := s.store.ListFoodEntries(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load food log: %w", err)
	}
	return entries, nil
}

// LogFood 新增一筆飲食紀錄
func (s *Service) LogFood(ctx context.Context, user string, entry store.FoodEntry) (store.FoodEntry, error) {
	saved, err := s.store.AddFoodEntry(ctx, user, entry)
	if err != nil {
		if common.IsValidationError(err) {
			return store.FoodEntry{}, err
		}
		return store.FoodEntry{}, fmt.Errorf("failed to add food entry: %w", err)
	}
	common.LogDebug("新增飲食紀錄",
		zap.String("user", user),
		zap.String("id", saved.ID),
		zap.Float64("calories", saved.Calories),
	)
	return saved, nil
}

// RemoveFoodEntry 刪除飲食紀錄，不存在時回傳 store.ErrFoodEntryNotFound
func (s *Service) RemoveFoodEntry(ctx context.Context, user, id string) error {
	if err := s.store.RemoveFoodEntry(ctx, user, id); err != nil {
		return fmt.Errorf("failed to remove food entry %s: %w", id, err)
	}
	return nil
}

// Profile 使用者偏好與資料統計
// mealPlansCount 只計算至少有一餐的週次，清空過的週不算
func (s *Service) Profile(ctx context.Context, user string) (Profile, error) {
	prefs, err := s.store.GetPreferences(ctx, user)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	items, err := s.store.ListIngredients(ctx, user)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load ingredients: %w", err)
	}
	plans, err := s.store.ListPlans(ctx, user)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load plans: %w", err)
	}
	entries, err := s.store.ListFoodEntries(ctx, user)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load food log: %w", err)
	}

	stats := Statistics{
		IngredientCount:  len(items),
		NutritionEntries: len(entries),
	}
	for _, plan := range plans {
		if len(plan) > 0 {
			stats.MealPlansCount++
		}
	}
	return Profile{
		User:        user,
		Preferences: prefs,
		Targets:     prefs.Targets(),
		Statistics:  stats,
	}, nil
}
