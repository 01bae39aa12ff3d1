// Package nutrition 由熱量目標推算三大營養素目標並計算達成率
package nutrition

import (
	"math"
	"strings"

	"meal-planner/internal/core/meal"
)

// DefaultCalorieTarget 未設定偏好時的每日熱量
const DefaultCalorieTarget = 2000

// DefaultDiet 預設飲食類型
const DefaultDiet = "balanced"

// 三大營養素佔熱量比例與每克熱量
const (
	proteinRatio = 0.3
	carbsRatio   = 0.5
	fatRatio     = 0.2

	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// Targets 每日目標（克，熱量為大卡）
type Targets struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// TargetsFor 由熱量目標推算營養素目標，非正數視為預設值
func TargetsFor(calorieTarget int) Targets {
	if calorieTarget <= 0 {
		calorieTarget = DefaultCalorieTarget
	}
	cal := float64(calorieTarget)
	return Targets{
		Calories: calorieTarget,
		Protein:  int(math.Round(cal * proteinRatio / kcalPerGramProtein)),
		Carbs:    int(math.Round(cal * carbsRatio / kcalPerGramCarbs)),
		Fat:      int(math.Round(cal * fatRatio / kcalPerGramFat)),
	}
}

// PercentOfTarget 回傳 [0,100] 的達成率
// actual <= 0 時為 0；目標為 0 但已有攝取時視為達成
func PercentOfTarget(actual, target float64) float64 {
	if math.IsNaN(actual) || actual <= 0 {
		return 0
	}
	if math.IsNaN(target) || target <= 0 {
		return 100
	}
	return math.Min(100, actual/target*100)
}

// Percentages 各營養素達成率
type Percentages struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// PercentagesOf 計算加總相對於目標的達成率
func PercentagesOf(totals meal.Totals, targets Targets) Percentages {
	return Percentages{
		Calories: PercentOfTarget(totals.Calories, float64(targets.Calories)),
		Protein:  PercentOfTarget(totals.Protein, float64(targets.Protein)),
		Carbs:    PercentOfTarget(totals.Carbs, float64(targets.Carbs)),
		Fat:      PercentOfTarget(totals.Fat, float64(targets.Fat)),
	}
}

// MacroSplit 三大營養素佔總克數的比例（百分比）
type MacroSplit struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// SplitOf 計算營養素分布，沒有資料時全為 0
func SplitOf(totals meal.Totals) MacroSplit {
	sum := totals.Protein + totals.Carbs + totals.Fat
	if sum <= 0 {
		return MacroSplit{}
	}
	return MacroSplit{
		Protein: totals.Protein / sum * 100,
		Carbs:   totals.Carbs / sum * 100,
		Fat:     totals.Fat / sum * 100,
	}
}

// Preferences 使用者飲食偏好
type Preferences struct {
	Diet          string   `json:"diet"`
	CalorieTarget int      `json:"calorieTarget"`
	Allergies     []string `json:"allergies"`
}

// DefaultPreferences 未設定時使用的偏好
func DefaultPreferences() Preferences {
	return Preferences{
		Diet:          DefaultDiet,
		CalorieTarget: DefaultCalorieTarget,
		Allergies:     []string{},
	}
}

// Normalized 補齊預設值並清理過敏原清單
func (p Preferences) Normalized() Preferences {
	out := Preferences{
		Diet:          strings.ToLower(strings.TrimSpace(p.Diet)),
		CalorieTarget: p.CalorieTarget,
		Allergies:     make([]string, 0, len(p.Allergies)),
	}
	if out.Diet == "" {
		out.Diet = DefaultDiet
	}
	if out.CalorieTarget <= 0 {
		out.CalorieTarget = DefaultCalorieTarget
	}
	seen := make(map[string]bool, len(p.Allergies))
	for _, a := range p.Allergies {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out.Allergies = append(out.Allergies, a)
	}
	return out
}

// Targets 偏好對應的每日目標
func (p Preferences) Targets() Targets {
	return TargetsFor(p.CalorieTarget)
}
