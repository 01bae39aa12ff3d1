package planner

import (
	"math/rand"
	"strings"
	"time"

	"meal-planner/internal/core/meal"
	"meal-planner/internal/core/recipe"
)

// RecordFromRecipe 以食譜建立指定時段的餐點
func RecordFromRecipe(r recipe.Recipe, weekKey string, slot meal.Slot, now time.Time) meal.Record {
	return meal.Normalize(map[string]any{
		"name":       r.Name,
		"calories":   r.Nutrition.Calories,
		"protein":    r.Nutrition.Protein,
		"carbs":      r.Nutrition.Carbs,
		"fat":        r.Nutrition.Fat,
		"mealTime":   meal.Label(slot.MealType),
		"weekKey":    weekKey,
		"dayIndex":   slot.Day,
		"mealType":   slot.MealType,
		"recipeId":   string(r.ID),
		"isSelected": true,
	}, now)
}

// GenerateSamplePlan 為七天每個餐別隨機挑選食譜
// 某餐別沒有對應食譜時改從全部食譜挑選；recipes 為空時回傳空計畫
func GenerateSamplePlan(recipes []recipe.Recipe, weekKey string, rng *rand.Rand, now time.Time) meal.Plan {
	plan := make(meal.Plan)
	if len(recipes) == 0 {
		return plan
	}

	byType := make(map[string][]recipe.Recipe)
	for _, r := range recipes {
		mt := strings.ToLower(strings.TrimSpace(r.MealType))
		byType[mt] = append(byType[mt], r)
	}

	for day := 0; day < 7; day++ {
		for _, mealType := range meal.Types() {
			candidates := byType[mealType]
			if len(candidates) == 0 {
				candidates = recipes
			}
			picked := candidates[rng.Intn(len(candidates))]
			slot := meal.Slot{Day: day, MealType: mealType}
			plan[slot] = RecordFromRecipe(picked, weekKey, slot, now)
		}
	}
	return plan
}
