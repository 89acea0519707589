package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"filmmate/pkg/logger"
	"filmmate/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitKeyPrefix 限流计数key前缀
const RateLimitKeyPrefix = keyPrefix + "ratelimit:"

// RateLimitResult 一次限流判定的结果
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	Reset     time.Duration
}

// Allow 固定窗口计数限流：窗口内第一次请求设置过期时间
func Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	if client == nil {
		return RateLimitResult{Allowed: true, Remaining: limit}, ErrDisabled
	}

	fullKey := RateLimitKeyPrefix + key
	count, err := client.Incr(ctx, fullKey).Result()
	if err != nil {
		return RateLimitResult{Allowed: true, Remaining: limit}, fmt.Errorf("限流计数失败: %w", err)
	}
	if count == 1 {
		client.Expire(ctx, fullKey, window)
	}

	ttl, _ := client.TTL(ctx, fullKey).Result()
	if ttl < 0 {
		// 过期时间丢失时补设，避免计数永不重置
		client.Expire(ctx, fullKey, window)
		ttl = window
	}

	return RateLimitResult{
		Allowed:   count <= int64(limit),
		Remaining: max(0, limit-int(count)),
		Reset:     ttl,
	}, nil
}

// RateLimitMiddleware 基于Redis的限流中间件，Redis 不可用时放行
// keyFn 返回限流维度（用户ID或客户端IP）
func RateLimitMiddleware(name string, limit int, window time.Duration, keyFn func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		key := name + ":" + keyFn(c)
		result, err := Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，放行请求", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(result.Reset.Seconds())))

		if !result.Allowed {
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
