package planner

import (
	"sync"
	"time"

	"meal-planner/internal/core/meal"
)

// EventType 計畫變更類型
type EventType string

const (
	EventMealAssigned  EventType = "meal_assigned"
	EventMealRemoved   EventType = "meal_removed"
	EventSelection     EventType = "selection_changed"
	EventPlanReplaced  EventType = "plan_replaced"
	EventPlanGenerated EventType = "plan_generated"
	EventWeekCleared   EventType = "week_cleared"
)

// Event 計畫寫入後發送給訂閱者的通知，Plan 為寫入後的完整週計畫
type Event struct {
	Type    EventType
	User    string
	WeekKey string
	Slot    *meal.Slot
	Plan    meal.Plan
	At      time.Time
}

// Listener 事件處理函式，不得阻塞
type Listener func(Event)

type observers struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func (o *observers) subscribe(l Listener) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.listeners == nil {
		o.listeners = make(map[int]Listener)
	}
	id := o.nextID
	o.nextID++
	o.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.listeners, id)
			o.mu.Unlock()
		})
	}
}

func (o *observers) publish(e Event) {
	o.mu.RLock()
	ls := make([]Listener, 0, len(o.listeners))
	for _, l := range o.listeners {
		ls = append(ls, l)
	}
	o.mu.RUnlock()

	for _, l := range ls {
		// 每個訂閱者拿到自己的副本
		ev := e
		ev.Plan = e.Plan.Clone()
		l(ev)
	}
}
