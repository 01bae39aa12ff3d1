// Package meal 處理餐點紀錄、週計畫與營養加總
package meal

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"meal-planner/internal/core/week"

	"github.com/spf13/cast"
)

// 預設值
const (
	DefaultName     = "Unknown Meal"
	DefaultMealTime = "Meal"
	DefaultMealType = Lunch
)

// Record 週計畫中一格的餐點
type Record struct {
	Name       string    `json:"name"`
	Calories   float64   `json:"calories"`
	Protein    float64   `json:"protein"`
	Carbs      float64   `json:"carbs"`
	Fat        float64   `json:"fat"`
	MealTime   string    `json:"mealTime"`
	WeekKey    string    `json:"weekKey"`
	DayIndex   int       `json:"dayIndex"`
	MealType   string    `json:"mealType"`
	RecipeID   string    `json:"recipeId,omitempty"`
	IsSelected bool      `json:"isSelected"`
	Timestamp  time.Time `json:"timestamp"`
}

// Normalize 將鬆散的餐點資料轉為欄位完整的紀錄，任何輸入都不會失敗
func Normalize(raw map[string]any, now time.Time) Record {
	r := Record{
		Name:       text(raw["name"], DefaultName),
		Calories:   nutrient(raw["calories"]),
		Protein:    nutrient(raw["protein"]),
		Carbs:      nutrient(raw["carbs"]),
		Fat:        nutrient(raw["fat"]),
		MealTime:   text(raw["mealTime"], DefaultMealTime),
		WeekKey:    weekKey(raw["weekKey"], now),
		DayIndex:   dayIndex(raw["dayIndex"]),
		MealType:   mealType(raw["mealType"]),
		RecipeID:   recipeID(raw["recipeId"]),
		IsSelected: selected(raw["isSelected"]),
		Timestamp:  timestamp(raw["timestamp"], now),
	}
	return r
}

// Normalized 重新套用正規化規則
func (r Record) Normalized() Record {
	return Normalize(r.Raw(), r.Timestamp)
}

// Raw 轉回鬆散格式，與 JSON 形式一致
func (r Record) Raw() map[string]any {
	raw := map[string]any{
		"name":       r.Name,
		"calories":   r.Calories,
		"protein":    r.Protein,
		"carbs":      r.Carbs,
		"fat":        r.Fat,
		"mealTime":   r.MealTime,
		"weekKey":    r.WeekKey,
		"dayIndex":   r.DayIndex,
		"mealType":   r.MealType,
		"isSelected": r.IsSelected,
		"timestamp":  r.Timestamp.Format(time.RFC3339Nano),
	}
	if r.RecipeID != "" {
		raw["recipeId"] = r.RecipeID
	}
	return raw
}

// Slot 紀錄本身標示的時段
func (r Record) Slot() Slot {
	return Slot{Day: r.DayIndex, MealType: r.MealType}
}

// HasRealNutrition 至少一項營養素大於 0
func (r Record) HasRealNutrition() bool {
	return r.Calories > 0 || r.Protein > 0 || r.Carbs > 0 || r.Fat > 0
}

func text(v any, def string) string {
	switch s := v.(type) {
	case nil:
		return def
	case string:
		if strings.TrimSpace(s) == "" {
			return def
		}
		return s
	case bool:
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil || strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// toNumber 接受數字與數字字串，布林與其他型別視為非數字
func toNumber(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch n := v.(type) {
	case nil, bool:
		return 0, false
	case json.Number:
		f, err = n.Float64()
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		f, err = cast.ToFloat64E(v)
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func nutrient(v any) float64 {
	f, ok := toNumber(v)
	if !ok || f < 0 {
		return 0
	}
	return f
}

func dayIndex(v any) int {
	f, ok := toNumber(v)
	if !ok || f != math.Trunc(f) || f < 0 || f > 6 {
		return 0
	}
	return int(f)
}

func mealType(v any) string {
	s, ok := v.(string)
	if !ok {
		return DefaultMealType
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if !ValidType(s) {
		return DefaultMealType
	}
	return s
}

func weekKey(v any, now time.Time) string {
	switch k := v.(type) {
	case string:
		if key, err := week.ParseKey(k); err == nil {
			return key
		}
	case time.Time:
		if !k.IsZero() {
			return week.Key(k)
		}
	}
	return week.Key(now)
}

func recipeID(v any) string {
	switch id := v.(type) {
	case nil, bool:
		return ""
	case json.Number:
		return id.String()
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// 未標示即視為已選取
func selected(v any) bool {
	switch s := v.(type) {
	case bool:
		return s
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return true
		}
		return b
	}
	return true
}

func timestamp(v any, now time.Time) time.Time {
	switch ts := v.(type) {
	case time.Time:
		if !ts.IsZero() {
			return ts.UTC()
		}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(ts)); err == nil && !t.IsZero() {
			return t.UTC()
		}
	}
	return now.UTC()
}
