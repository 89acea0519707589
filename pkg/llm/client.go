package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"filmmate/config"
	"filmmate/pkg/logger"
	"filmmate/pkg/metrics"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnavailable 熔断打开或限流等待超时，调用方应直接走降级逻辑
var ErrUnavailable = errors.New("llm unavailable")

// 熔断器名称
const breakerName = "llm"

// 连续失败多少次后打开熔断
const tripAfterFailures = 5

// 响应体读取上限
const maxResponseBytes = 1 << 20

// Message 对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 一次推理请求
// Purpose 仅用于日志与指标（intent / reply）
type Request struct {
	Purpose     string
	System      string
	User        string
	Temperature float64
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model    string      `json:"model"`
	Messages []Message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  chatOptions `json:"options"`
}

type chatResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

// Client Ollama 兼容的推理服务客户端
// 每次调用都有独立超时，外层依次是客户端限速和熔断

type Client struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[string]
}

// NewClient 创建推理客户端
func NewClient(cfg config.LLMConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfterFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("推理服务熔断状态变化",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		timeout:    timeout,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, burst),
		cb:         cb,
	}
}

// Complete 发送一次非流式对话请求，返回模型输出文本
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordLLMCall(req.Purpose, "rejected", time.Since(start))
		return "", fmt.Errorf("%w: rate limited: %v", ErrUnavailable, err)
	}

	text, err := c.cb.Execute(func() (string, error) {
		return c.do(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordLLMCall(req.Purpose, "rejected", time.Since(start))
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		metrics.RecordLLMCall(req.Purpose, "failure", time.Since(start))
		return "", err
	}

	metrics.RecordLLMCall(req.Purpose, "success", time.Since(start))
	return text, nil
}

// State 当前熔断状态
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

func (c *Client) do(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Stream:  false,
		Options: chatOptions{Temperature: req.Temperature},
	})
	if err != nil {
		return "", fmt.Errorf("encode llm request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build llm request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read llm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("llm error: %s", out.Error)
	}
	content := strings.TrimSpace(out.Message.Content)
	if content == "" {
		return "", errors.New("llm returned empty content")
	}
	return content, nil
}

// stateToFloat 熔断状态转换为指标值
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
