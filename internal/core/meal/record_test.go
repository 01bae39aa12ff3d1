package meal

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)

func TestNormalizeDefaults(t *testing.T) {
	r := Normalize(map[string]any{}, fixedNow)

	assert.Equal(t, Record{
		Name:       DefaultName,
		MealTime:   DefaultMealTime,
		WeekKey:    "2024-03-04",
		DayIndex:   0,
		MealType:   Lunch,
		IsSelected: true,
		Timestamp:  fixedNow,
	}, r)

	assert.Equal(t, r, Normalize(nil, fixedNow))
}

func TestNormalizeNutrition(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"Float", 312.5, 312.5},
		{"Int", 300, 300},
		{"JSONNumber", json.Number("42"), 42},
		{"NumericString", " 120.5 ", 120.5},
		{"EmptyString", "", 0},
		{"Garbage", "lots", 0},
		{"Negative", -50, 0},
		{"NegativeString", "-3", 0},
		{"Bool", true, 0},
		{"NaN", math.NaN(), 0},
		{"Inf", math.Inf(1), 0},
		{"NaNString", "NaN", 0},
		{"Slice", []any{1, 2}, 0},
		{"Nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Normalize(map[string]any{"calories": tt.in, "fat": tt.in}, fixedNow)
			assert.Equal(t, tt.want, r.Calories)
			assert.Equal(t, tt.want, r.Fat)
		})
	}
}

func TestNormalizeFields(t *testing.T) {
	t.Run("DayIndex", func(t *testing.T) {
		assert.Equal(t, 3, Normalize(map[string]any{"dayIndex": 3}, fixedNow).DayIndex)
		assert.Equal(t, 6, Normalize(map[string]any{"dayIndex": "6"}, fixedNow).DayIndex)
		assert.Equal(t, 2, Normalize(map[string]any{"dayIndex": json.Number("2")}, fixedNow).DayIndex)
		assert.Equal(t, 0, Normalize(map[string]any{"dayIndex": 7}, fixedNow).DayIndex)
		assert.Equal(t, 0, Normalize(map[string]any{"dayIndex": -1}, fixedNow).DayIndex)
		assert.Equal(t, 0, Normalize(map[string]any{"dayIndex": 2.5}, fixedNow).DayIndex)
	})

	t.Run("MealType", func(t *testing.T) {
		assert.Equal(t, Dinner, Normalize(map[string]any{"mealType": "dinner"}, fixedNow).MealType)
		assert.Equal(t, Dessert, Normalize(map[string]any{"mealType": " Dessert "}, fixedNow).MealType)
		assert.Equal(t, Lunch, Normalize(map[string]any{"mealType": "brunch"}, fixedNow).MealType)
		assert.Equal(t, Lunch, Normalize(map[string]any{"mealType": 3}, fixedNow).MealType)
	})

	t.Run("IsSelected", func(t *testing.T) {
		assert.True(t, Normalize(map[string]any{"isSelected": nil}, fixedNow).IsSelected)
		assert.False(t, Normalize(map[string]any{"isSelected": false}, fixedNow).IsSelected)
		assert.False(t, Normalize(map[string]any{"isSelected": "false"}, fixedNow).IsSelected)
		assert.True(t, Normalize(map[string]any{"isSelected": "yes please"}, fixedNow).IsSelected)
		assert.True(t, Normalize(map[string]any{"isSelected": 0}, fixedNow).IsSelected)
	})

	t.Run("WeekKey", func(t *testing.T) {
		assert.Equal(t, "2024-02-26", Normalize(map[string]any{"weekKey": "2024-03-01"}, fixedNow).WeekKey)
		assert.Equal(t, "2024-03-04", Normalize(map[string]any{"weekKey": "soon"}, fixedNow).WeekKey)
	})

	t.Run("RecipeID", func(t *testing.T) {
		assert.Equal(t, "12", Normalize(map[string]any{"recipeId": 12}, fixedNow).RecipeID)
		assert.Equal(t, "12", Normalize(map[string]any{"recipeId": json.Number("12")}, fixedNow).RecipeID)
		assert.Equal(t, "abc", Normalize(map[string]any{"recipeId": "abc"}, fixedNow).RecipeID)
		assert.Equal(t, "", Normalize(map[string]any{"recipeId": nil}, fixedNow).RecipeID)
	})

	t.Run("Timestamp", func(t *testing.T) {
		ts := "2024-03-05T08:15:00+02:00"
		r := Normalize(map[string]any{"timestamp": ts}, fixedNow)
		assert.Equal(t, time.Date(2024, time.March, 5, 6, 15, 0, 0, time.UTC), r.Timestamp)

		r = Normalize(map[string]any{"timestamp": "yesterday"}, fixedNow)
		assert.Equal(t, fixedNow, r.Timestamp)
	})

	t.Run("Name", func(t *testing.T) {
		assert.Equal(t, "Oatmeal", Normalize(map[string]any{"name": "Oatmeal"}, fixedNow).Name)
		assert.Equal(t, DefaultName, Normalize(map[string]any{"name": "   "}, fixedNow).Name)
		assert.Equal(t, DefaultName, Normalize(map[string]any{"name": map[string]any{}}, fixedNow).Name)
	})
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []map[string]any{
		{},
		{"name": "Pancakes", "calories": "350", "protein": -2, "isSelected": "false", "dayIndex": 4},
		{"calories": math.NaN(), "mealType": "Dinner", "weekKey": "2024-03-09", "recipeId": 7},
		{"timestamp": "2024-01-01T10:00:00.123456789+05:30", "fat": json.Number("9.5")},
	}

	for _, in := range inputs {
		once := Normalize(in, fixedNow)
		twice := Normalize(once.Raw(), fixedNow)
		assert.Equal(t, once, twice)
		assert.Equal(t, once, once.Normalized())
	}
}

func TestRecordJSON(t *testing.T) {
	r := Normalize(map[string]any{"name": "Soup", "calories": 200, "recipeId": "5"}, fixedNow)
	data, err := json.Marshal(r)
	assert.NoError(t, err)

	var fields map[string]any
	assert.NoError(t, json.Unmarshal(data, &fields))
	for _, k := range []string{"name", "calories", "protein", "carbs", "fat", "mealTime", "weekKey", "dayIndex", "mealType", "recipeId", "isSelected", "timestamp"} {
		assert.Contains(t, fields, k)
	}

	data, _ = json.Marshal(Normalize(nil, fixedNow))
	assert.NotContains(t, string(data), "recipeId")
}
