package nutrition

import (
	"time"

	"meal-planner/internal/core/meal"
	"meal-planner/internal/core/week"
)

// DayProgress 單日加總與熱量達成率
type DayProgress struct {
	Day               string      `json:"day"`
	Date              string      `json:"date"`
	Totals            meal.Totals `json:"totals"`
	CaloriePercentage float64     `json:"caloriePercentage"`
	IsToday           bool        `json:"isToday"`
}

// WeekSummary 一週營養摘要
type WeekSummary struct {
	WeekKey     string        `json:"weekKey"`
	Days        []DayProgress `json:"days"`
	Totals      meal.Totals   `json:"totals"`
	Targets     Targets       `json:"targets"`
	Percentages Percentages   `json:"percentages"`
	MealCount   int           `json:"mealCount"`
}

// DailyReport 指定日期的營養報告
type DailyReport struct {
	Date        string          `json:"date"`
	WeekKey     string          `json:"weekKey"`
	DayIndex    int             `json:"dayIndex"`
	Totals      meal.Totals     `json:"totals"`
	Percentages Percentages     `json:"percentages"`
	Targets     Targets         `json:"targets"`
	Split       MacroSplit      `json:"macroSplit"`
	Week        []DayProgress   `json:"week"`
	Meals       meal.MealCounts `json:"meals"`
}

// weekProgress 產生七天的進度，today 為 -1 表示不標示今天
func weekProgress(plan meal.Plan, weekKey string, targets Targets, today int) []DayProgress {
	days := meal.AggregateDays(plan)
	dates, err := week.Days(weekKey)
	if err != nil {
		dates = make([]string, 7)
	}

	out := make([]DayProgress, len(days))
	for i, t := range days {
		out[i] = DayProgress{
			Day:               week.DayLabel(i),
			Date:              dates[i],
			Totals:            t,
			CaloriePercentage: PercentOfTarget(t.Calories, float64(targets.Calories)),
			IsToday:           i == today,
		}
	}
	return out
}

// SummarizeWeek 彙整一週計畫，達成率以七天目標總和計算
func SummarizeWeek(plan meal.Plan, weekKey string, prefs Preferences) WeekSummary {
	targets := prefs.Normalized().Targets()
	total := meal.SumWeek(plan)
	weekTargets := Targets{
		Calories: targets.Calories * 7,
		Protein:  targets.Protein * 7,
		Carbs:    targets.Carbs * 7,
		Fat:      targets.Fat * 7,
	}

	return WeekSummary{
		WeekKey:     weekKey,
		Days:        weekProgress(plan, weekKey, targets, -1),
		Totals:      total,
		Targets:     targets,
		Percentages: PercentagesOf(total, weekTargets),
		MealCount:   meal.CountMeals(plan, -1).Week,
	}
}

// BuildDailyReport 以 date 所在週的計畫產生當日報告
func BuildDailyReport(plan meal.Plan, prefs Preferences, date time.Time) DailyReport {
	targets := prefs.Normalized().Targets()
	day := week.DayIndex(date)
	weekKey := week.Key(date)
	totals := meal.AggregateDay(plan, day)

	return DailyReport{
		Date:        date.Format(week.KeyLayout),
		WeekKey:     weekKey,
		DayIndex:    day,
		Totals:      totals,
		Percentages: PercentagesOf(totals, targets),
		Targets:     targets,
		Split:       SplitOf(totals),
		Week:        weekProgress(plan, weekKey, targets, day),
		Meals:       meal.CountMeals(plan, day),
	}
}
