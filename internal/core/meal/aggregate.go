package meal

import (
	"meal-planner/internal/core/week"
)

// Totals 營養加總
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add 累加一筆紀錄
func (t *Totals) Add(r Record) {
	t.Calories += r.Calories
	t.Protein += r.Protein
	t.Carbs += r.Carbs
	t.Fat += r.Fat
}

// Plus 回傳兩者相加
func (t Totals) Plus(o Totals) Totals {
	return Totals{
		Calories: t.Calories + o.Calories,
		Protein:  t.Protein + o.Protein,
		Carbs:    t.Carbs + o.Carbs,
		Fat:      t.Fat + o.Fat,
	}
}

// Counts 判斷一筆計畫項目是否計入加總：星期有效、未取消選取且有營養資料
func Counts(slot Slot, r Record) bool {
	return week.ValidDay(slot.Day) && r.IsSelected && r.HasRealNutrition()
}

// AggregateDays 計算週一至週日的加總
func AggregateDays(plan Plan) [7]Totals {
	var days [7]Totals
	for slot, r := range plan {
		r = r.Normalized()
		if !Counts(slot, r) {
			continue
		}
		days[slot.Day].Add(r)
	}
	return days
}

// AggregateDay 計算單日加總，超出範圍的星期回傳零值
func AggregateDay(plan Plan, day int) Totals {
	if !week.ValidDay(day) {
		return Totals{}
	}
	return AggregateDays(plan)[day]
}

// AggregateWeek 以 Mon..Sun 標籤回傳每日加總，七天一律存在
func AggregateWeek(plan Plan) map[string]Totals {
	days := AggregateDays(plan)
	out := make(map[string]Totals, len(days))
	for i, t := range days {
		out[week.DayLabel(i)] = t
	}
	return out
}

// SumWeek 整週總和
func SumWeek(plan Plan) Totals {
	var total Totals
	for _, t := range AggregateDays(plan) {
		total = total.Plus(t)
	}
	return total
}

// MealCounts 計入加總的餐點數
type MealCounts struct {
	Today int `json:"today"`
	Week  int `json:"week"`
}

// CountMeals 統計今日與本週計入的餐點
func CountMeals(plan Plan, today int) MealCounts {
	var c MealCounts
	for slot, r := range plan {
		if !Counts(slot, r.Normalized()) {
			continue
		}
		c.Week++
		if slot.Day == today {
			c.Today++
		}
	}
	return c
}
