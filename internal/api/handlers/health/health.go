package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"meal-planner/internal/core/notify"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Recipes   int                    `json:"recipes"`
	Runtime   map[string]interface{} `json:"runtime"`
	Sync      *notify.Status         `json:"sync,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version  string
	store    Pinger
	recipes  int
	notifier *notify.Notifier
}

// NewHandler 建立健康檢查處理器，notifier 可為 nil
func NewHandler(version string, store Pinger, recipes int, notifier *notify.Notifier) *Handler {
	return &Handler{version: version, store: store, recipes: recipes, notifier: notifier}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Recipes:   h.recipes,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.notifier != nil {
		st := h.notifier.Status()
		response.Sync = &st
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 儲存可連線且目錄已載入才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		common.LogWarn("儲存無法連線", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"store":  err.Error(),
		})
		return
	}
	if h.recipes == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"catalog": "empty",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
