package meal

import (
	"fmt"
	"strconv"
	"strings"

	"meal-planner/internal/core/week"
)

// 餐別
const (
	Breakfast = "breakfast"
	Lunch     = "lunch"
	Dinner    = "dinner"
	Dessert   = "dessert"
)

var mealTypes = []string{Breakfast, Lunch, Dinner, Dessert}

// Types 依顯示順序回傳所有餐別
func Types() []string {
	out := make([]string, len(mealTypes))
	copy(out, mealTypes)
	return out
}

// ValidType 檢查是否為已知餐別
func ValidType(mealType string) bool {
	for _, t := range mealTypes {
		if t == mealType {
			return true
		}
	}
	return false
}

// Label 將餐別轉為顯示用標籤，例如 dinner -> Dinner
func Label(mealType string) string {
	if mealType == "" {
		return ""
	}
	return strings.ToUpper(mealType[:1]) + mealType[1:]
}

// Slot 週計畫中的一格 (星期, 餐別)
type Slot struct {
	Day      int
	MealType string
}

// NewSlot 建立並驗證時段
func NewSlot(day int, mealType string) (Slot, error) {
	s := Slot{Day: day, MealType: strings.ToLower(strings.TrimSpace(mealType))}
	if !s.Valid() {
		return Slot{}, fmt.Errorf("invalid slot %d_%s", day, mealType)
	}
	return s, nil
}

// ParseSlot 解析 "{day}_{mealType}" 形式的鍵
// 沒有底線或星期不是整數時回傳 false；星期超出範圍仍可解析，由 Valid 判斷
func ParseSlot(key string) (Slot, bool) {
	dayPart, mealType, found := strings.Cut(key, "_")
	if !found {
		return Slot{}, false
	}
	day, err := strconv.Atoi(dayPart)
	if err != nil {
		return Slot{}, false
	}
	return Slot{Day: day, MealType: mealType}, true
}

// String 回傳儲存用的文字鍵
func (s Slot) String() string {
	return strconv.Itoa(s.Day) + "_" + s.MealType
}

// Valid 星期在 0..6 且餐別已知
func (s Slot) Valid() bool {
	return week.ValidDay(s.Day) && ValidType(s.MealType)
}
