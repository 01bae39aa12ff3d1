// Package store 保存使用者的週計畫、飲食偏好與食材庫存
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"meal-planner/internal/core/meal"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

var (
	// ErrIngredientNotFound 食材不存在
	ErrIngredientNotFound = errors.New("ingredient not found")
	// ErrFoodEntryNotFound 飲食紀錄不存在
	ErrFoodEntryNotFound = errors.New("food entry not found")
)

// PlanStore 週計畫儲存，讀取不存在的週次回傳空計畫
// 沒有刪除操作：移除餐點或清空一週都以寫入新的計畫表示
type PlanStore interface {
	GetPlan(ctx context.Context, user, weekKey string) (meal.Plan, error)
	SetPlan(ctx context.Context, user, weekKey string, plan meal.Plan) error
	ListPlans(ctx context.Context, user string) (map[string]meal.Plan, error)
}

// PreferenceStore 飲食偏好儲存，未設定時回傳預設偏好
type PreferenceStore interface {
	GetPreferences(ctx context.Context, user string) (nutrition.Preferences, error)
	SetPreferences(ctx context.Context, user string, prefs nutrition.Preferences) error
}

// IngredientStore 食材庫存
type IngredientStore interface {
	ListIngredients(ctx context.Context, user string) ([]Ingredient, error)
	AddIngredient(ctx context.Context, user string, ing Ingredient) (Ingredient, error)
	RemoveIngredient(ctx context.Context, user, id string) error
}

// FoodLogStore 手動記錄的飲食紀錄，依記錄時間排序
type FoodLogStore interface {
	ListFoodEntries(ctx context.Context, user string) ([]FoodEntry, error)
	AddFoodEntry(ctx context.Context, user string, entry FoodEntry) (FoodEntry, error)
	RemoveFoodEntry(ctx context.Context, user, id string) error
}

// Store 所有儲存功能
type Store interface {
	PlanStore
	PreferenceStore
	IngredientStore
	FoodLogStore
	Ping(ctx context.Context) error
	Close() error
}

// Ingredient 使用者庫存中的食材
type Ingredient struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Quantity string    `json:"quantity,omitempty"`
	Unit     string    `json:"unit,omitempty"`
	Category string    `json:"category,omitempty"`
	Added    time.Time `json:"added"`
}

// Validate 檢查必要欄位
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return common.NewValidationError("ingredient name is required")
	}
	return nil
}

// prepare 指派 ID 與加入時間
func (i Ingredient) prepare(now time.Time) Ingredient {
	i.Name = strings.TrimSpace(i.Name)
	i.Quantity = strings.TrimSpace(i.Quantity)
	i.Unit = strings.TrimSpace(i.Unit)
	i.Category = strings.TrimSpace(i.Category)
	i.ID = common.GenerateUUID()
	i.Added = now.UTC()
	return i
}

// FoodEntry 一筆飲食紀錄，與週計畫分開統計
type FoodEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	MealType  string    `json:"mealType,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate 名稱必填，營養數值不可為負
func (e FoodEntry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return common.NewValidationError("food entry name is required")
	}
	for _, v := range []float64{e.Calories, e.Protein, e.Carbs, e.Fat} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return common.NewValidationError("nutrition values must be non-negative numbers")
		}
	}
	return nil
}

func (e FoodEntry) prepare(now time.Time) FoodEntry {
	e.Name = strings.TrimSpace(e.Name)
	e.MealType = strings.ToLower(strings.TrimSpace(e.MealType))
	e.ID = common.GenerateUUID()
	e.Timestamp = now.UTC()
	return e
}

func sortFoodEntries(entries []FoodEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		return entries[i].ID < entries[j].ID
	})
}

// IngredientNames 取出食材名稱，供推薦使用
func IngredientNames(items []Ingredient) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}

// New 依設定建立儲存
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		s, err := NewRedisStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
