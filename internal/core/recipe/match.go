package recipe

import (
	"math"
	"regexp"
	"strings"
)

// similarityThreshold 超過此分數視為相符
const similarityThreshold = 0.6

var (
	quantityPattern  = regexp.MustCompile(`[0-9½¼¾⅓⅔⅛⅜⅝⅞.,]`)
	unitPattern      = regexp.MustCompile(`(?i)\b(?:cup|tbsp|tsp|oz|lb|kg|g|ml|cl|dl|liter|pound|ounce|teaspoon|tablespoon)s?\b`)
	adjectivePattern = regexp.MustCompile(`(?i)\b(?:sliced|chopped|diced|minced|grated|fresh|dried|ground|powdered)\b`)
	symbolPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// ExtractIngredientName 從食材行取出食材名稱
// 例如 "2 cups chopped fresh spinach," -> "spinach"
func ExtractIngredientName(line string) string {
	s := quantityPattern.ReplaceAllString(line, "")
	s = unitPattern.ReplaceAllString(s, "")
	s = adjectivePattern.ReplaceAllString(s, "")
	s = symbolPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// normalizeUserIngredients 轉小寫並去除空白項
func normalizeUserIngredients(ingredients []string) []string {
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing = strings.ToLower(strings.TrimSpace(ing)); ing != "" {
			out = append(out, ing)
		}
	}
	return out
}

// ingredientMatches 名稱為空時任何使用者食材都包含它
func ingredientMatches(name string, userIngredients []string) bool {
	for _, ing := range userIngredients {
		if strings.Contains(ing, name) || strings.Contains(name, ing) || Similarity(ing, name) > similarityThreshold {
			return true
		}
	}
	return false
}

// Match 計算使用者現有食材能滿足食譜的比例
func Match(r Recipe, userIngredients []string) MatchStats {
	return match(r, normalizeUserIngredients(userIngredients))
}

func match(r Recipe, user []string) MatchStats {
	stats := MatchStats{MatchedIngredients: []string{}}
	total := len(r.Ingredients)
	if total == 0 {
		return stats
	}

	for _, line := range r.Ingredients {
		name := strings.ToLower(ExtractIngredientName(line))
		if ingredientMatches(name, user) {
			stats.MatchedIngredients = append(stats.MatchedIngredients, line)
		}
	}

	stats.Matched = len(stats.MatchedIngredients)
	stats.Missing = total - stats.Matched
	stats.Percentage = int(math.Round(float64(stats.Matched) / float64(total) * 100))
	return stats
}
