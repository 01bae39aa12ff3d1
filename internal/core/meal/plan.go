package meal

import (
	"encoding/json"
	"sort"
	"time"

	"meal-planner/internal/pkg/common"
)

// Plan 一週的餐點，每個時段最多一筆
type Plan map[Slot]Record

// Clone 複製計畫，避免呼叫端共用底層 map
func (p Plan) Clone() Plan {
	out := make(Plan, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Slots 依星期、餐別順序列出時段
func (p Plan) Slots() []Slot {
	slots := make([]Slot, 0, len(p))
	for s := range p {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		return typeOrder(slots[i].MealType) < typeOrder(slots[j].MealType)
	})
	return slots
}

func typeOrder(mealType string) int {
	for i, t := range mealTypes {
		if t == mealType {
			return i
		}
	}
	return len(mealTypes)
}

// MarshalJSON 以 "{day}_{mealType}" 為鍵輸出
func (p Plan) MarshalJSON() ([]byte, error) {
	out := make(map[string]Record, len(p))
	for s, r := range p {
		out[s.String()] = r
	}
	return json.Marshal(out)
}

// UnmarshalJSON 解碼並正規化每一筆紀錄
func (p *Plan) UnmarshalJSON(data []byte) error {
	plan, err := DecodePlan(data, time.Now())
	if err != nil {
		return err
	}
	*p = plan
	return nil
}

// DecodePlan 解碼週計畫 JSON
// 無法解析的鍵、null 與非物件的項目會被略過
func DecodePlan(data []byte, now time.Time) (Plan, error) {
	var raw map[string]any
	if err := common.ParseJSONBytes(data, &raw); err != nil {
		return nil, err
	}
	return PlanFromRaw(raw, now), nil
}

// PlanFromRaw 從鬆散的 map 建立週計畫
func PlanFromRaw(raw map[string]any, now time.Time) Plan {
	plan := make(Plan, len(raw))
	for key, v := range raw {
		slot, ok := ParseSlot(key)
		if !ok {
			continue
		}
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		plan[slot] = Normalize(entry, now)
	}
	return plan
}
