package recipe

import "sort"

// DefaultRecommendationLimit 推薦筆數上限預設值
const DefaultRecommendationLimit = 6

// Rank 依食材相符比例排序，略過 0% 的食譜，同分保持目錄順序
func Rank(recipes []Recipe, userIngredients []string, limit int) []Recommendation {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	user := normalizeUserIngredients(userIngredients)

	recs := make([]Recommendation, 0, len(recipes))
	for _, r := range recipes {
		stats := match(r, user)
		if stats.Percentage == 0 {
			continue
		}
		recs = append(recs, Recommendation{Recipe: r, Match: stats})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Match.Percentage > recs[j].Match.Percentage
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// Recommend 先套用目錄篩選再排序
func Recommend(recipes []Recipe, userIngredients []string, f Filter, limit int) []Recommendation {
	return Rank(f.Apply(recipes), userIngredients, limit)
}
