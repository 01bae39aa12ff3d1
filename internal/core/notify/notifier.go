// Package notify 將週計畫變更非同步推送到後端
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"meal-planner/internal/core/meal"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PlansPath 後端接收週計畫的路徑
const PlansPath = "/api/meal-plans"

// Payload 推送內容
type Payload struct {
	WeekKey string    `json:"weekKey"`
	Plan    meal.Plan `json:"plan"`
}

type job struct {
	user    string
	payload Payload
}

// Status 推送隊列狀態
type Status struct {
	QueueLength  int   `json:"queue_length"`
	MaxQueueSize int   `json:"max_queue_size"`
	Workers      int   `json:"workers"`
	Sent         int64 `json:"sent"`
	Failed       int64 `json:"failed"`
	Dropped      int64 `json:"dropped"`
}

// Notifier 以固定數量的 worker 推送計畫
type Notifier struct {
	cfg    config.SyncConfig
	client *resty.Client
	queue  chan job
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	sent    int64
	failed  int64
	dropped int64

	// OnResult 每次推送完成後呼叫，供監控使用
	OnResult func(err error)
}

// New 建立並啟動推送器
func New(cfg config.SyncConfig) *Notifier {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}

	n := &Notifier{
		cfg:    cfg,
		client: client,
		queue:  make(chan job, cfg.MaxSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		n.wg.Add(1)
		go n.worker(i)
	}

	common.LogInfo("後端同步已啟動",
		zap.String("base_url", cfg.BaseURL),
		zap.String("api_key", config.MaskAPIKey(cfg.APIKey)),
		zap.Int("workers", cfg.Workers),
		zap.Int("max_queue_size", cfg.MaxSize),
	)
	return n
}

// Handle 作為 planner.Listener 使用，隊列已滿時丟棄並記錄
func (n *Notifier) Handle(e planner.Event) {
	n.Enqueue(e.User, e.WeekKey, e.Plan)
}

// Enqueue 加入推送隊列，成功時回傳 true
func (n *Notifier) Enqueue(user, weekKey string, plan meal.Plan) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return false
	}

	select {
	case n.queue <- job{user: user, payload: Payload{WeekKey: weekKey, Plan: plan}}:
		return true
	default:
		atomic.AddInt64(&n.dropped, 1)
		common.LogWarn("同步隊列已滿，捨棄變更",
			zap.String("user", user),
			zap.String("week", weekKey),
			zap.Int("max_queue_size", n.cfg.MaxSize),
		)
		return false
	}
}

func (n *Notifier) worker(id int) {
	defer n.wg.Done()
	for j := range n.queue {
		err := n.send(context.Background(), j)
		if err != nil {
			atomic.AddInt64(&n.failed, 1)
			common.LogError("同步週計畫失敗",
				zap.Int("worker", id),
				zap.String("user", j.user),
				zap.String("week", j.payload.WeekKey),
				zap.Error(err),
			)
		} else {
			atomic.AddInt64(&n.sent, 1)
		}
		if n.OnResult != nil {
			n.OnResult(err)
		}
	}
}

// send 推送單筆變更
func (n *Notifier) send(ctx context.Context, j job) error {
	start := time.Now()
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("X-User-ID", j.user).
		SetBody(j.payload).
		Post(PlansPath)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("backend returned status %d", resp.StatusCode())
	}

	common.LogDebug("週計畫已同步",
		zap.String("user", j.user),
		zap.String("week", j.payload.WeekKey),
		zap.Int("meals", len(j.payload.Plan)),
		zap.Duration("耗時", time.Since(start)),
	)
	return nil
}

// Status 目前隊列狀態
func (n *Notifier) Status() Status {
	return Status{
		QueueLength:  len(n.queue),
		MaxQueueSize: n.cfg.MaxSize,
		Workers:      n.cfg.Workers,
		Sent:         atomic.LoadInt64(&n.sent),
		Failed:       atomic.LoadInt64(&n.failed),
		Dropped:      atomic.LoadInt64(&n.dropped),
	}
}

// Close 停止接收並等待隊列中的變更送出
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	n.wg.Wait()
}
