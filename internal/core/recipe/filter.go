package recipe

import (
	"strings"
)

// FilterAll 表示不限制該條件
const FilterAll = "all"

// Filter 目錄篩選條件，空字串或 "all" 代表不限
type Filter struct {
	Diet       string
	MaxTime    int // 分鐘，0 表示不限
	Difficulty string
	MealType   string
	Search     string
	// Exclude 食材行含任一項即排除，用於過敏原
	Exclude []string
}

func active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, FilterAll)
}

func sameValue(criterion, value string) bool {
	return strings.EqualFold(strings.TrimSpace(criterion), strings.TrimSpace(value))
}

// Matches 判斷單一食譜是否符合條件
func (f Filter) Matches(r Recipe) bool {
	if active(f.Diet) && !sameValue(f.Diet, r.Diet) {
		return false
	}
	if f.MaxTime > 0 && r.Time > f.MaxTime {
		return false
	}
	if active(f.Difficulty) && !sameValue(f.Difficulty, r.Difficulty) {
		return false
	}
	if active(f.MealType) && !sameValue(f.MealType, r.MealType) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" && !searchHit(r, term) {
		return false
	}
	for _, ex := range f.Exclude {
		ex = strings.ToLower(strings.TrimSpace(ex))
		if ex == "" {
			continue
		}
		for _, line := range r.Ingredients {
			if strings.Contains(strings.ToLower(line), ex) {
				return false
			}
		}
	}
	return true
}

func searchHit(r Recipe, term string) bool {
	if strings.Contains(strings.ToLower(r.Name), term) || strings.Contains(strings.ToLower(r.Description), term) {
		return true
	}
	for _, line := range r.Ingredients {
		if strings.Contains(strings.ToLower(line), term) {
			return true
		}
	}
	return false
}

// Apply 依序保留符合條件的食譜
func (f Filter) Apply(recipes []Recipe) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
