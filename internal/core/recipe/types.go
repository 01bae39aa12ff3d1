package recipe

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID 食譜識別碼，目錄中可能是數字或字串
type ID string

// UnmarshalJSON 同時接受數字與字串
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON 純整數以數字輸出，維持目錄原本的格式
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Nutrition 每份營養資訊
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Recipe 目錄中的食譜，欄位名稱與目錄 JSON 一致
type Recipe struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MealType    string    `json:"meal_type"`
	Diet        string    `json:"diet"`
	Time        int       `json:"time"`
	Difficulty  string    `json:"difficulty"`
	Image       string    `json:"image,omitempty"`
	Ingredients []string  `json:"ingredients"`
	Nutrition   Nutrition `json:"nutrition"`
}

// MatchStats 食材比對結果
type MatchStats struct {
	Matched            int      `json:"matched"`
	Missing            int      `json:"missing"`
	Percentage         int      `json:"percentage"`
	MatchedIngredients []string `json:"matchedIngredients"`
}

// Recommendation 推薦結果
type Recommendation struct {
	Recipe Recipe     `json:"recipe"`
	Match  MatchStats `json:"match"`
}
