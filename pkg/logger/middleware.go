package logger

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader 请求ID头
	RequestIDHeader = "X-Request-ID"
	// ContextRequestIDKey 请求ID在gin.Context中的键名
	ContextRequestIDKey = "request_id"
)

// ErrorLoggerMiddleware 错误日志中间件，panic 时记录并返回500
func ErrorLoggerMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		Error("HTTP请求发生panic",
			zap.String("request_id", c.GetString(ContextRequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.String("error", fmt.Sprint(recovered)),
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// RequestLogger 请求日志记录器
// 为每个请求分配请求ID（沿用客户端传入的 X-Request-ID），按状态码选择日志级别
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 开始时间
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		// 处理请求
		c.Next()

		latency := time.Since(start)

		// 获取状态码
		status := c.Writer.Status()

		// 记录请求日志
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if userID, ok := c.Get("user_id"); ok {
			fields = append(fields, zap.Any("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		// 根据状态码选择日志级别
		switch {
		case status >= 500:
			Error("HTTP请求错误", fields...)
		case status >= 400:
			Warn("HTTP请求警告", fields...)
		default:
			Info("HTTP请求成功", fields...)
		}
	}
}
