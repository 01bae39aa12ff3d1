// Package week 將日期對應到以週一為起點的週次與星期索引
package week

import (
	"fmt"
	"strings"
	"time"
)

// KeyLayout 週次字串格式
const KeyLayout = "2006-01-02"

var (
	dayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	dayNames  = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
)

// StartOfWeek 回傳 t 所在週的週一零點（沿用 t 的時區）
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	offset := 1 - weekday
	if weekday == 0 {
		offset = -6
	}
	y, m, d := t.Date()
	return time.Date(y, m, d+offset, 0, 0, 0, 0, t.Location())
}

// Key 回傳 t 所在週的週次字串
func Key(t time.Time) string {
	return StartOfWeek(t).Format(KeyLayout)
}

// DayIndex 回傳以週一為 0 的星期索引
func DayIndex(t time.Time) int {
	day := int(t.Weekday()) - 1
	if day < 0 {
		day = 6
	}
	return day
}

// ParseKey 將任一 YYYY-MM-DD 日期正規化為該週週一的週次字串
func ParseKey(s string) (string, error) {
	t, err := time.Parse(KeyLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid week key %q: %w", s, err)
	}
	return Key(t), nil
}

// Start 將週次字串轉回週一零點，loc 為 nil 時使用 UTC
func Start(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(KeyLayout, strings.TrimSpace(key), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week key %q: %w", key, err)
	}
	return StartOfWeek(t), nil
}

// Days 列出該週七天的日期字串
func Days(key string) ([]string, error) {
	start, err := Start(key, nil)
	if err != nil {
		return nil, err
	}
	days := make([]string, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i).Format(KeyLayout)
	}
	return days, nil
}

// ValidDay 檢查星期索引是否在 0..6
func ValidDay(day int) bool {
	return day >= 0 && day < 7
}

// DayLabel 回傳星期縮寫，超出範圍回傳空字串
func DayLabel(day int) string {
	if !ValidDay(day) {
		return ""
	}
	return dayLabels[day]
}

// DayName 回傳星期全名
func DayName(day int) string {
	if !ValidDay(day) {
		return ""
	}
	return dayNames[day]
}

// Labels 依序回傳 Mon..Sun
func Labels() []string {
	return dayLabels[:]
}
