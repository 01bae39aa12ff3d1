package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"meal-planner/internal/core/meal"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore Redis 儲存
//
// 鍵配置：
//
//	{prefix}:plans:{user}        hash  weekKey -> 計畫 JSON
//	{prefix}:prefs:{user}        string 偏好 JSON
//	{prefix}:ingredients:{user}  hash  id -> 食材 JSON
//	{prefix}:foodlog:{user}      hash  id -> 飲食紀錄 JSON
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore 建立 Redis 儲存並測試連線
func NewRedisStore(ctx context.Context, cfg config.StoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("使用 Redis 儲存",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
	)
	return NewRedisStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreWithClient 使用既有連線建立儲存
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "mealplanner"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) plansKey(user string) string {
	return fmt.Sprintf("%s:plans:%s", s.prefix, user)
}

func (s *RedisStore) prefsKey(user string) string {
	return fmt.Sprintf("%s:prefs:%s", s.prefix, user)
}

func (s *RedisStore) ingredientsKey(user string) string {
	return fmt.Sprintf("%s:ingredients:%s", s.prefix, user)
}

func (s *RedisStore) foodLogKey(user string) string {
	return fmt.Sprintf("%s:foodlog:%s", s.prefix, user)
}

// GetPlan 取得週計畫
func (s *RedisStore) GetPlan(ctx context.Context, user, weekKey string) (meal.Plan, error) {
	start := time.Now()
	key := s.plansKey(user)

	data, err := s.client.HGet(ctx, key, weekKey).Bytes()
	if errors.Is(err, redis.Nil) {
		common.LogStoreOp("hget", key, time.Since(start), nil)
		return meal.Plan{}, nil
	}
	if err != nil {
		common.LogStoreOp("hget", key, time.Since(start), err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	common.LogStoreOp("hget", key, time.Since(start), nil)

	plan, err := meal.DecodePlan(data, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to decode plan %s: %w", weekKey, err)
	}
	return plan, nil
}

// SetPlan 寫入週計畫
func (s *RedisStore) SetPlan(ctx context.Context, user, weekKey string, plan meal.Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	start := time.Now()
	key := s.plansKey(user)
	err = s.client.HSet(ctx, key, weekKey, data).Err()
	common.LogStoreOp("hset", key, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}
	return nil
}

// ListPlans 取得使用者所有週計畫
func (s *RedisStore) ListPlans(ctx context.Context, user string) (map[string]meal.Plan, error) {
	start := time.Now()
	key := s.plansKey(user)

	all, err := s.client.HGetAll(ctx, key).Result()
	common.LogStoreOp("hgetall", key, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	now := s.now()
	out := make(map[string]meal.Plan, len(all))
	for weekKey, data := range all {
		plan, err := meal.DecodePlan([]byte(data), now)
		if err != nil {
			common.LogWarn("略過無法解析的週計畫", zap.String("week", weekKey), zap.Error(err))
			continue
		}
		out[weekKey] = plan
	}
	return out, nil
}

// GetPreferences 取得偏好
func (s *RedisStore) GetPreferences(ctx context.Context, user string) (nutrition.Preferences, error) {
	data, err := s.client.Get(ctx, s.prefsKey(user)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nutrition.DefaultPreferences(), nil
	}
	if err != nil {
		return nutrition.Preferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}

	var prefs nutrition.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nutrition.Preferences{}, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return prefs.Normalized(), nil
}

// SetPreferences 寫入偏好
func (s *RedisStore) SetPreferences(ctx context.Context, user string, prefs nutrition.Preferences) error {
	data, err := json.Marshal(prefs.Normalized())
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := s.client.Set(ctx, s.prefsKey(user), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set preferences: %w", err)
	}
	return nil
}

// ListIngredients 依加入時間列出食材
func (s *RedisStore) ListIngredients(ctx context.Context, user string) ([]Ingredient, error) {
	all, err := s.client.HGetAll(ctx, s.ingredientsKey(user)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}

	items := make([]Ingredient, 0, len(all))
	for id, data := range all {
		var ing Ingredient
		if err := json.Unmarshal([]byte(data), &ing); err != nil {
			common.LogWarn("略過無法解析的食材", zap.String("id", id), zap.Error(err))
			continue
		}
		items = append(items, ing)
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].Added.Equal(items[j].Added) {
			return items[i].Added.Before(items[j].Added)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// AddIngredient 新增食材並指派 ID
func (s *RedisStore) AddIngredient(ctx context.Context, user string, ing Ingredient) (Ingredient, error) {
	if err := ing.Validate(); err != nil {
		return Ingredient{}, err
	}
	ing = ing.prepare(s.now())

	data, err := json.Marshal(ing)
	if err != nil {
		return Ingredient{}, fmt.Errorf("failed to marshal ingredient: %w", err)
	}
	if err := s.client.HSet(ctx, s.ingredientsKey(user), ing.ID, data).Err(); err != nil {
		return Ingredient{}, fmt.Errorf("failed to add ingredient: %w", err)
	}
	return ing, nil
}

// RemoveIngredient 移除食材
func (s *RedisStore) RemoveIngredient(ctx context.Context, user, id string) error {
	n, err := s.client.HDel(ctx, s.ingredientsKey(user), id).Result()
	if err != nil {
		return fmt.Errorf("failed to remove ingredient: %w", err)
	}
	if n == 0 {
		return ErrIngredientNotFound
	}
	return nil
}

// ListFoodEntries 依記錄時間列出飲食紀錄
func (s *RedisStore) ListFoodEntries(ctx context.Context, user string) ([]FoodEntry, error) {
	start := time.Now()
	key := s.foodLogKey(user)

	all, err := s.client.HGetAll(ctx, key).Result()
	common.LogStoreOp("hgetall", key, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list food entries: %w", err)
	}

	entries := make([]FoodEntry, 0, len(all))
	for id, data := range all {
		var e FoodEntry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			common.LogWarn("略過無法解析的飲食紀錄", zap.String("id", id), zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	sortFoodEntries(entries)
	return entries, nil
}

// AddFoodEntry 新增飲食紀錄
func (s *RedisStore) AddFoodEntry(ctx context.Context, user string, entry FoodEntry) (FoodEntry, error) {
	if err := entry.Validate(); err != nil {
		return FoodEntry{}, err
	}
	entry = entry.prepare(s.now())

	data, err := json.Marshal(entry)
	if err != nil {
		return FoodEntry{}, fmt.Errorf("failed to marshal food entry: %w", err)
	}
	if err := s.client.HSet(ctx, s.foodLogKey(user), entry.ID, data).Err(); err != nil {
		return FoodEntry{}, fmt.Errorf("failed to add food entry: %w", err)
	}
	return entry, nil
}

// RemoveFoodEntry 移除飲食紀錄
func (s *RedisStore) RemoveFoodEntry(ctx context.Context, user, id string) error {
	n, err := s.client.HDel(ctx, s.foodLogKey(user), id).Result()
	if err != nil {
		return fmt.Errorf("failed to remove food entry: %w", err)
	}
	if n == 0 {
		return ErrFoodEntryNotFound
	}
	return nil
}

// Ping 檢查連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
