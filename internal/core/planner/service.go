// Package planner 以儲存層為基礎提供週計畫的讀寫、隨機產生、摘要與推薦
package planner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"meal-planner/internal/core/meal"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/core/store"
	"meal-planner/internal/core/week"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	ErrInvalidWeekKey = errors.New("invalid week key")
	ErrInvalidSlot    = errors.New("invalid slot")
	ErrMealNotFound   = errors.New("no meal in slot")
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrNoRecipes      = errors.New("no recipes match the requested diet")
)

// Service 週計畫服務
// 所有讀取-修改-寫入都以 mu 序列化，避免並行請求互相覆蓋
type Service struct {
	store   store.Store
	catalog *recipe.Catalog

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time

	recommendationLimit int
	observers           observers
}

// Option 服務選項
type Option func(*Service)

// WithClock 指定時間來源
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand 指定亂數來源
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithRecommendationLimit 推薦筆數預設上限
func WithRecommendationLimit(n int) Option {
	return func(s *Service) { s.recommendationLimit = n }
}

// NewService 建立週計畫服務
func NewService(st store.Store, catalog *recipe.Catalog, opts ...Option) *Service {
	s := &Service{
		store:               st,
		catalog:             catalog,
		now:                 time.Now,
		rng:                 rand.New(rand.NewSource(time.Now().UnixNano())),
		recommendationLimit: recipe.DefaultRecommendationLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe 訂閱計畫變更，回傳取消訂閱函式
func (s *Service) Subscribe(l Listener) func() {
	return s.observers.subscribe(l)
}

// Catalog 食譜目錄
func (s *Service) Catalog() *recipe.Catalog {
	return s.catalog
}

// Now 服務目前時間
func (s *Service) Now() time.Time {
	return s.now()
}

// CurrentWeekKey 本週週次
func (s *Service) CurrentWeekKey() string {
	return week.Key(s.now())
}

func resolveWeekKey(weekKey string) (string, error) {
	key, err := week.ParseKey(weekKey)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeekKey, weekKey)
	}
	return key, nil
}

func (s *Service) notify(t EventType, user, weekKey string, slot *meal.Slot, plan meal.Plan) {
	s.observers.publish(Event{
		Type:    t,
		User:    user,
		WeekKey: weekKey,
		Slot:    slot,
		Plan:    plan,
		At:      s.now(),
	})
}

// update 在鎖內讀取、修改並寫回一週計畫，成功後通知訂閱者
func (s *Service) update(ctx context.Context, user, weekKey string, t EventType, slot *meal.Slot, fn func(meal.Plan) error) (meal.Plan, error) {
	key, err := resolveWeekKey(weekKey)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	plan, err := s.store.GetPlan(ctx, user, key)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		plan = meal.Plan{}
	}
	if err := fn(plan); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.store.SetPlan(ctx, user, key, plan); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	s.mu.Unlock()

	common.LogDebug("週計畫已更新",
		zap.String("user", user),
		zap.String("week", key),
		zap.String("event", string(t)),
		zap.Int("meals", len(plan)),
	)
	s.notify(t, user, key, slot, plan)
	return plan, nil
}

// Plan 讀取一週計畫
func (s *Service) Plan(ctx context.Context, user, weekKey string) (meal.Plan, error) {
	key, err := resolveWeekKey(weekKey)
	if err != nil {
		return nil, err
	}
	plan, err := s.store.GetPlan(ctx, user, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return plan, nil
}

// Plans 讀取使用者所有週計畫
func (s *Service) Plans(ctx context.Context, user string) (map[string]meal.Plan, error) {
	plans, err := s.store.ListPlans(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// ReplacePlan 以新的計畫取代整週，紀錄的週次一律改為該週
func (s *Service) ReplacePlan(ctx context.Context, user, weekKey string, plan meal.Plan) (meal.Plan, error) {
	key, err := resolveWeekKey(weekKey)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, user, key, EventPlanReplaced, nil, func(current meal.Plan) error {
		for slot := range current {
			delete(current, slot)
		}
		for slot, r := range plan {
			if !slot.Valid() {
				return fmt.Errorf("%w: %s", ErrInvalidSlot, slot)
			}
			r = r.Normalized()
			r.WeekKey = key
			r.DayIndex = slot.Day
			r.MealType = slot.MealType
			current[slot] = r
		}
		return nil
	})
}

func (s *Service) slotFor(day int, mealType string) (meal.Slot, error) {
	slot, err := meal.NewSlot(day, mealType)
	if err != nil {
		return meal.Slot{}, fmt.Errorf("%w: %d_%s", ErrInvalidSlot, day, mealType)
	}
	return slot, nil
}

// AssignMeal 以鬆散資料指定某時段的餐點，時段資訊以參數為準
func (s *Service) AssignMeal(ctx context.Context, user, weekKey string, day int, mealType string, raw map[string]any) (meal.Record, error) {
	slot, err := s.slotFor(day, mealType)
	if err != nil {
		return meal.Record{}, err
	}

	key, err := resolveWeekKey(weekKey)
	if err != nil {
		return meal.Record{}, err
	}

	var rec meal.Record
	_, err = s.update(ctx, user, key, EventMealAssigned, &slot, func(plan meal.Plan) error {
		fields := make(map[string]any, len(raw)+4)
		for k, v := range raw {
			fields[k] = v
		}
		fields["dayIndex"] = slot.Day
		fields["mealType"] = slot.MealType
		fields["weekKey"] = key
		if _, ok := fields["mealTime"]; !ok {
			fields["mealTime"] = meal.Label(slot.MealType)
		}
		rec = meal.Normalize(fields, s.now())
		plan[slot] = rec
		return nil
	})
	if err != nil {
		return meal.Record{}, err
	}
	return rec, nil
}

// AssignRecipe 將目錄中的食譜放入某時段
func (s *Service) AssignRecipe(ctx context.Context, user, weekKey string, day int, mealType, recipeID string) (meal.Record, error) {
	slot, err := s.slotFor(day, mealType)
	if err != nil {
		return meal.Record{}, err
	}
	r, ok := s.catalog.Get(recipeID)
	if !ok {
		return meal.Record{}, fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
	}

	key, err := resolveWeekKey(weekKey)
	if err != nil {
		return meal.Record{}, err
	}

	var rec meal.Record
	_, err = s.update(ctx, user, key, EventMealAssigned, &slot, func(plan meal.Plan) error {
		rec = RecordFromRecipe(r, key, slot, s.now())
		plan[slot] = rec
		return nil
	})
	if err != nil {
		return meal.Record{}, err
	}
	return rec, nil
}

// SetSelected 切換某時段餐點是否計入營養統計
func (s *Service) SetSelected(ctx context.Context, user, weekKey string, day int, mealType string, selected bool) (meal.Record, error) {
	slot, err := s.slotFor(day, mealType)
	if err != nil {
		return meal.Record{}, err
	}

	var rec meal.Record
	_, err = s.update(ctx, user, weekKey, EventSelection, &slot, func(plan meal.Plan) error {
		existing, ok := plan[slot]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMealNotFound, slot)
		}
		existing.IsSelected = selected
		rec = existing
		plan[slot] = existing
		return nil
	})
	if err != nil {
		return meal.Record{}, err
	}
	return rec, nil
}

// RemoveMeal 移除某時段的餐點
func (s *Service) RemoveMeal(ctx context.Context, user, weekKey string, day int, mealType string) error {
	slot, err := s.slotFor(day, mealType)
	if err != nil {
		return err
	}

	_, err = s.update(ctx, user, weekKey, EventMealRemoved, &slot, func(plan meal.Plan) error {
		if _, ok := plan[slot]; !ok {
			return fmt.Errorf("%w: %s", ErrMealNotFound, slot)
		}
		delete(plan, slot)
		return nil
	})
	return err
}

// ClearWeek 清空一週
func (s *Service) ClearWeek(ctx context.Context, user, weekKey string) error {
	_, err := s.update(ctx, user, weekKey, EventWeekCleared, nil, func(plan meal.Plan) error {
		for slot := range plan {
			delete(plan, slot)
		}
		return nil
	})
	return err
}

// GeneratePlan 依飲食類型從目錄隨機產生整週計畫並取代原計畫
// diet 為空時使用使用者偏好
func (s *Service) GeneratePlan(ctx context.Context, user, weekKey, diet string) (meal.Plan, error) {
	if strings.TrimSpace(diet) == "" {
		prefs, err := s.store.GetPreferences(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("failed to load preferences: %w", err)
		}
		diet = prefs.Diet
	}

	candidates := s.catalog.List(recipe.Filter{Diet: diet})
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecipes, diet)
	}

	key, err := resolveWeekKey(weekKey)
	if err != nil {
		return nil, err
	}

	plan, err := s.update(ctx, user, key, EventPlanGenerated, nil, func(current meal.Plan) error {
		generated := GenerateSamplePlan(candidates, key, s.rng, s.now())
		for slot := range current {
			delete(current, slot)
		}
		for slot, r := range generated {
			current[slot] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.LogInfo("已產生週計畫",
		zap.String("user", user),
		zap.String("diet", diet),
		zap.Int("candidates", len(candidates)),
		zap.Int("meals", len(plan)),
	)
	return plan, nil
}

// QuickAddResult 快速加入的結果
type QuickAddResult struct {
	WeekKey string      `json:"weekKey"`
	Day     string      `json:"day"`
	Slot    string      `json:"slot"`
	Meal    meal.Record `json:"meal"`
}

// QuickAdd 將食譜放入今天對應餐別的時段，餐別未知時放在午餐
func (s *Service) QuickAdd(ctx context.Context, user, recipeID string) (QuickAddResult, error) {
	r, ok := s.catalog.Get(recipeID)
	if !ok {
		return QuickAddResult{}, fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
	}

	now := s.now()
	mealType := strings.ToLower(strings.TrimSpace(r.MealType))
	if !meal.ValidType(mealType) {
		mealType = meal.Lunch
	}
	weekKey := week.Key(now)
	day := week.DayIndex(now)

	rec, err := s.AssignRecipe(ctx, user, weekKey, day, mealType, recipeID)
	if err != nil {
		return QuickAddResult{}, err
	}
	return QuickAddResult{
		WeekKey: weekKey,
		Day:     week.DayName(day),
		Slot:    meal.Slot{Day: day, MealType: mealType}.String(),
		Meal:    rec,
	}, nil
}

// WeekSummary 一週營養摘要
func (s *Service) WeekSummary(ctx context.Context, user, weekKey string) (nutrition.WeekSummary, error) {
	key, err := resolveWeekKey(weekKey)
	if err != nil {
		return nutrition.WeekSummary{}, err
	}
	plan, err := s.store.GetPlan(ctx, user, key)
	if err != nil {
		return nutrition.WeekSummary{}, fmt.Errorf("failed to load plan: %w", err)
	}
	prefs, err := s.store.GetPreferences(ctx, user)
	if err != nil {
		return nutrition.WeekSummary{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	return nutrition.SummarizeWeek(plan, key, prefs), nil
}

// DailyReport 指定日期的營養報告
func (s *Service) DailyReport(ctx context.Context, user string, date time.Time) (nutrition.DailyReport, error) {
	plan, err := s.store.GetPlan(ctx, user, week.Key(date))
	if err != nil {
		return nutrition.DailyReport{}, fmt.Errorf("failed to load plan: %w", err)
	}
	prefs, err := s.store.GetPreferences(ctx, user)
	if err != nil {
		return nutrition.DailyReport{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	return nutrition.BuildDailyReport(plan, prefs, date), nil
}

// Recommendations 依食材推薦食譜
// ingredients 為空時使用庫存，偏好中的過敏原一律排除
func (s *Service) Recommendations(ctx context.Context, user string, ingredients []string, f recipe.Filter, limit int) ([]recipe.Recommendation, error) {
	if len(ingredients) == 0 {
		items, err := s.store.ListIngredients(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("failed to load ingredients: %w", err)
		}
		ingredients = store.IngredientNames(items)
	}

	prefs, err := s.store.GetPreferences(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	f.Exclude = append(f.Exclude, prefs.Allergies...)

	if limit <= 0 {
		limit = s.recommendationLimit
	}
	return recipe.Recommend(s.catalog.All(), ingredients, f, limit), nil
}
