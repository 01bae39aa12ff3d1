package recipe

import (
	"strings"
	"unicode/utf8"
)

// containmentScore 一方包含另一方時的分數，刻意低於 1 以區分完全相同
const containmentScore = 0.9

// Similarity 粗略的字元相似度，範圍 [0,1]
//
// 不是編輯距離：計算較短字串中有多少字元出現在較長字串的任意位置（重複字元各自計算），
// 再除以較長字串的長度。長度相同時以 b 為較長者。
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return containmentScore
	}

	longer, shorter := b, a
	if utf8.RuneCountInString(a) > utf8.RuneCountInString(b) {
		longer, shorter = a, b
	}

	matches := 0
	for _, r := range shorter {
		if strings.ContainsRune(longer, r) {
			matches++
		}
	}
	return float64(matches) / float64(utf8.RuneCountInString(longer))
}
