// Package monitoring 提供 Prometheus 指標
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mealplanner"

// Metrics 服務指標，每個實例使用自己的 registry
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	planEventsTotal      *prometheus.CounterVec
	recommendationsTotal prometheus.Counter
	syncResultsTotal     *prometheus.CounterVec
	catalogRecipes       prometheus.Gauge
}

// NewMetrics 建立指標並註冊到新的 registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		planEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_events_total",
				Help:      "Meal plan changes by event type",
			},
			[]string{"type"},
		),
		recommendationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendations_total",
				Help:      "Total number of recommendation requests",
			},
		),
		syncResultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_results_total",
				Help:      "Backend sync attempts by result",
			},
			[]string{"result"},
		),
		catalogRecipes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_recipes",
				Help:      "Number of recipes in the loaded catalog",
			},
		),
	}
}

// HTTPMiddleware 記錄請求數與耗時
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// PlanEvent 計畫變更
func (m *Metrics) PlanEvent(eventType string) {
	m.planEventsTotal.WithLabelValues(eventType).Inc()
}

// Recommendation 推薦請求
func (m *Metrics) Recommendation() {
	m.recommendationsTotal.Inc()
}

// SyncResult 後端同步結果
func (m *Metrics) SyncResult(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.syncResultsTotal.WithLabelValues(result).Inc()
}

// SetCatalogSize 目錄食譜數
func (m *Metrics) SetCatalogSize(n int) {
	m.catalogRecipes.Set(float64(n))
}

// Registry 指標 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 處理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
