package store

import (
	"context"
	"sync"
	"time"

	"meal-planner/internal/core/meal"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 記憶體儲存，讀寫都複製資料，呼叫端無法改動內部狀態
type MemoryStore struct {
	mu          sync.RWMutex
	plans       map[string]map[string]meal.Plan
	prefs       map[string]nutrition.Preferences
	ingredients map[string][]Ingredient
	foodLog     map[string][]FoodEntry
	stats       memoryStats
	now         func() time.Time
}

type memoryStats struct {
	reads  int64
	writes int64
}

// NewMemoryStore 建立記憶體儲存
func NewMemoryStore() *MemoryStore {
	common.LogInfo("使用記憶體儲存")
	return &MemoryStore{
		plans:       make(map[string]map[string]meal.Plan),
		prefs:       make(map[string]nutrition.Preferences),
		ingredients: make(map[string][]Ingredient),
		foodLog:     make(map[string][]FoodEntry),
		now:         time.Now,
	}
}

// GetPlan 取得週計畫
func (m *MemoryStore) GetPlan(ctx context.Context, user, weekKey string) (meal.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.reads++

	plan, ok := m.plans[user][weekKey]
	if !ok {
		return meal.Plan{}, nil
	}
	return plan.Clone(), nil
}

// SetPlan 寫入週計畫
func (m *MemoryStore) SetPlan(ctx context.Context, user, weekKey string, plan meal.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.writes++

	weeks, ok := m.plans[user]
	if !ok {
		weeks = make(map[string]meal.Plan)
		m.plans[user] = weeks
	}
	weeks[weekKey] = plan.Clone()
	return nil
}

// ListPlans 取得使用者所有週計畫
func (m *MemoryStore) ListPlans(ctx context.Context, user string) (map[string]meal.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.reads++

	out := make(map[string]meal.Plan, len(m.plans[user]))
	for key, plan := range m.plans[user] {
		out[key] = plan.Clone()
	}
	return out, nil
}

// GetPreferences 取得偏好
func (m *MemoryStore) GetPreferences(ctx context.Context, user string) (nutrition.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.reads++

	prefs, ok := m.prefs[user]
	if !ok {
		return nutrition.DefaultPreferences(), nil
	}
	return prefs.Normalized(), nil
}

// SetPreferences 寫入偏好
func (m *MemoryStore) SetPreferences(ctx context.Context, user string, prefs nutrition.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.writes++

	m.prefs[user] = prefs.Normalized()
	return nil
}

// ListIngredients 依加入順序列出食材
func (m *MemoryStore) ListIngredients(ctx context.Context, user string) ([]Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.reads++

	out := make([]Ingredient, len(m.ingredients[user]))
	copy(out, m.ingredients[user])
	return out, nil
}

// AddIngredient 新增食材並指派 ID
func (m *MemoryStore) AddIngredient(ctx context.Context, user string, ing Ingredient) (Ingredient, error) {
	if err := ing.Validate(); err != nil {
		return Ingredient{}, err
	}
	ing = ing.prepare(m.now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.writes++

	m.ingredients[user] = append(m.ingredients[user], ing)
	return ing, nil
}

// RemoveIngredient 移除食材
func (m *MemoryStore) RemoveIngredient(ctx context.Context, user, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.writes++

	items := m.ingredients[user]
	for i, it := range items {
		if it.ID == id {
			kept := make([]Ingredient, 0, len(items)-1)
			kept = append(kept, items[:i]...)
			m.ingredients[user] = append(kept, items[i+1:]...)
			return nil
		}
	}
	return ErrIngredientNotFound
}

// ListFoodEntries 依記錄時間列出飲食紀錄
func (m *MemoryStore) ListFoodEntries(ctx context.Context, user string) ([]FoodEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.reads++

	out := make([]FoodEntry, len(m.foodLog[user]))
	copy(out, m.foodLog[user])
	return out, nil
}

// AddFoodEntry 新增飲食紀錄
func (m *MemoryStore) AddFoodEntry(ctx context.Context, user string, entry FoodEntry) (FoodEntry, error) {
	if err := entry.Validate(); err != nil {
		return FoodEntry{}, err
	}
	entry = entry.prepare(m.now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.writes++

	m.foodLog[user] = append(m.foodLog[user], entry)
	return entry, nil
}

// RemoveFoodEntry 移除飲食紀錄
func (m *MemoryStore) RemoveFoodEntry(ctx context.Context, user, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.writes++

	entries := m.foodLog[user]
	for i, e := range entries {
		if e.ID == id {
			kept := make([]FoodEntry, 0, len(entries)-1)
			kept = append(kept, entries[:i]...)
			m.foodLog[user] = append(kept, entries[i+1:]...)
			return nil
		}
	}
	return ErrFoodEntryNotFound
}

// Ping 記憶體儲存永遠可用
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// GetStats 取得讀寫統計
func (m *MemoryStore) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"driver": "memory",
		"users":  len(m.plans),
		"reads":  m.stats.reads,
		"writes": m.stats.writes,
	}
}

// Close 清空資料
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plans = make(map[string]map[string]meal.Plan)
	m.prefs = make(map[string]nutrition.Preferences)
	m.ingredients = make(map[string][]Ingredient)
	m.foodLog = make(map[string][]FoodEntry)
	common.LogInfo("記憶體儲存已關閉",
		zap.Int64("讀取次數", m.stats.reads),
		zap.Int64("寫入次數", m.stats.writes),
	)
	return nil
}
