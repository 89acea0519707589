package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP 接口指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmmate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmmate_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmmate_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	// 大模型调用指标
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmmate_llm_requests_total",
			Help: "Total number of LLM calls by purpose and outcome",
		},
		[]string{"purpose", "outcome"}, // outcome: success / failure / rejected
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmmate_llm_request_duration_seconds",
			Help:    "LLM call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"purpose"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filmmate_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmmate_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// 聊天搜索降级次数
	ChatFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmmate_chat_fallbacks_total",
			Help: "Total number of chat requests served by a fallback path",
		},
		[]string{"stage"}, // stage: extract / summarize
	)

	// 目录缓存
	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmmate_catalog_cache_hits_total",
			Help: "Total number of catalog page cache hits",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmmate_catalog_cache_misses_total",
			Help: "Total number of catalog page cache misses",
		},
	)

	// 评分重算
	RatingRecalculations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmmate_rating_recalculations_total",
			Help: "Total number of movie rating recalculations",
		},
	)

	// WebSocket
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmmate_websocket_connections",
			Help: "Current number of open WebSocket connections",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmmate_notifications_total",
			Help: "Total number of realtime notifications by delivery",
		},
		[]string{"delivery"}, // delivery: pushed / queued / dropped
	)
)

// RecordHTTPRequest 记录一次HTTP请求
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLLMCall 记录一次大模型调用
func RecordLLMCall(purpose, outcome string, duration time.Duration) {
	LLMRequestsTotal.WithLabelValues(purpose, outcome).Inc()
	if outcome != "rejected" {
		LLMRequestDuration.WithLabelValues(purpose).Observe(duration.Seconds())
	}
}

// RecordChatFallback 记录聊天降级
func RecordChatFallback(stage string) {
	ChatFallbacks.WithLabelValues(stage).Inc()
}

// RecordCatalogCache 记录目录缓存命中情况
func RecordCatalogCache(hit bool) {
	if hit {
		CatalogCacheHits.Inc()
		return
	}
	CatalogCacheMisses.Inc()
}

// RecordNotification 记录实时通知投递方式
func RecordNotification(delivery string) {
	NotificationsTotal.WithLabelValues(delivery).Inc()
}

// Middleware gin请求指标中间件，按路由模板聚合避免标签爆炸
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		HTTPActiveRequests.Inc()
		defer HTTPActiveRequests.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Handler /metrics 接口
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
