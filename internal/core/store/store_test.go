package store

import (
	"context"
	"os"
	"testing"
	"time"

	"meal-planner/internal/core/meal"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC)

func samplePlan() meal.Plan {
	return meal.Plan{
		{Day: 0, MealType: meal.Breakfast}: meal.Normalize(map[string]any{
			"name": "Oats", "calories": 300, "dayIndex": 0, "mealType": meal.Breakfast, "weekKey": "2024-03-04",
		}, testNow),
		{Day: 2, MealType: meal.Dinner}: meal.Normalize(map[string]any{
			"name": "Curry", "calories": 650, "dayIndex": 2, "mealType": meal.Dinner, "weekKey": "2024-03-04", "recipeId": "12",
		}, testNow),
	}
}

// runStoreContract 兩種實作共用的行為測試
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("MissingPlanIsEmpty", func(t *testing.T) {
		plan, err := s.GetPlan(ctx, "alice", "2024-03-04")
		require.NoError(t, err)
		assert.NotNil(t, plan)
		assert.Empty(t, plan)
	})

	t.Run("SetAndGetPlan", func(t *testing.T) {
		want := samplePlan()
		require.NoError(t, s.SetPlan(ctx, "alice", "2024-03-04", want))

		got, err := s.GetPlan(ctx, "alice", "2024-03-04")
		require.NoError(t, err)
		assert.Equal(t, want, got)

		// 其他使用者不受影響
		other, err := s.GetPlan(ctx, "bob", "2024-03-04")
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("EmptyPlanClearsWeek", func(t *testing.T) {
		require.NoError(t, s.SetPlan(ctx, "alice", "2024-03-11", samplePlan()))
		require.NoError(t, s.SetPlan(ctx, "alice", "2024-03-11", meal.Plan{}))

		got, err := s.GetPlan(ctx, "alice", "2024-03-11")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ListPlans", func(t *testing.T) {
		plans, err := s.ListPlans(ctx, "alice")
		require.NoError(t, err)
		assert.Contains(t, plans, "2024-03-04")
		assert.Len(t, plans["2024-03-04"], 2)

		plans, err = s.ListPlans(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, plans)
	})

	t.Run("Preferences", func(t *testing.T) {
		prefs, err := s.GetPreferences(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, nutrition.DefaultPreferences(), prefs)

		require.NoError(t, s.SetPreferences(ctx, "alice", nutrition.Preferences{Diet: "Vegan", CalorieTarget: 1800, Allergies: []string{"Peanut"}}))
		prefs, err = s.GetPreferences(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, nutrition.Preferences{Diet: "vegan", CalorieTarget: 1800, Allergies: []string{"peanut"}}, prefs)
	})

	t.Run("Ingredients", func(t *testing.T) {
		_, err := s.AddIngredient(ctx, "alice", Ingredient{Name: "  "})
		require.Error(t, err)

		eggs, err := s.AddIngredient(ctx, "alice", Ingredient{Name: " eggs ", Quantity: "12", Category: "dairy"})
		require.NoError(t, err)
		assert.NotEmpty(t, eggs.ID)
		assert.Equal(t, "eggs", eggs.Name)
		assert.False(t, eggs.Added.IsZero())

		milk, err := s.AddIngredient(ctx, "alice", Ingredient{Name: "milk"})
		require.NoError(t, err)
		assert.NotEqual(t, eggs.ID, milk.ID)

		items, err := s.ListIngredients(ctx, "alice")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"eggs", "milk"}, IngredientNames(items))

		require.NoError(t, s.RemoveIngredient(ctx, "alice", eggs.ID))
		assert.ErrorIs(t, s.RemoveIngredient(ctx, "alice", eggs.ID), ErrIngredientNotFound)

		items, err = s.ListIngredients(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"milk"}, IngredientNames(items))
	})

	t.Run("FoodLog", func(t *testing.T) {
		_, err := s.AddFoodEntry(ctx, "alice", FoodEntry{Name: " "})
		require.Error(t, err)
		_, err = s.AddFoodEntry(ctx, "alice", FoodEntry{Name: "apple", Calories: -5})
		require.Error(t, err)

		apple, err := s.AddFoodEntry(ctx, "alice", FoodEntry{Name: " apple ", Calories: 95, Carbs: 25, MealType: "Snack"})
		require.NoError(t, err)
		assert.NotEmpty(t, apple.ID)
		assert.Equal(t, "apple", apple.Name)
		assert.Equal(t, "snack", apple.MealType)
		assert.Equal(t, testNow, apple.Timestamp)

		shake, err := s.AddFoodEntry(ctx, "alice", FoodEntry{Name: "protein shake", Calories: 180, Protein: 30})
		require.NoError(t, err)

		entries, err := s.ListFoodEntries(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.ElementsMatch(t, []string{apple.ID, shake.ID}, []string{entries[0].ID, entries[1].ID})

		other, err := s.ListFoodEntries(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, other)

		require.NoError(t, s.RemoveFoodEntry(ctx, "alice", apple.ID))
		assert.ErrorIs(t, s.RemoveFoodEntry(ctx, "alice", apple.ID), ErrFoodEntryNotFound)

		entries, err = s.ListFoodEntries(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, shake, entries[0])
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.now = func() time.Time { return testNow }
	runStoreContract(t, s)

	t.Run("CopyOnRead", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, s.SetPlan(ctx, "carol", "2024-03-04", samplePlan()))

		got, err := s.GetPlan(ctx, "carol", "2024-03-04")
		require.NoError(t, err)
		delete(got, meal.Slot{Day: 0, MealType: meal.Breakfast})

		again, err := s.GetPlan(ctx, "carol", "2024-03-04")
		require.NoError(t, err)
		assert.Len(t, again, 2)
	})

	t.Run("Stats", func(t *testing.T) {
		stats := s.GetStats()
		assert.Equal(t, "memory", stats["driver"])
		assert.Greater(t, stats["reads"].(int64), int64(0))
	})

	require.NoError(t, s.Close())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	prefix := "mealplanner-test-" + time.Now().Format("150405.000000")
	s, err := NewRedisStore(context.Background(), config.StoreConfig{RedisAddr: addr, KeyPrefix: prefix})
	require.NoError(t, err)
	defer func() {
		ctx := context.Background()
		keys, _ := s.client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			s.client.Del(ctx, keys...)
		}
		_ = s.Close()
	}()

	s.now = func() time.Time { return testNow }
	runStoreContract(t, s)
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(context.Background(), config.StoreConfig{Driver: "sqlite"})
	assert.Error(t, err)

	// 無法連線的 Redis
	_, err = New(context.Background(), config.StoreConfig{Driver: "redis", RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}
