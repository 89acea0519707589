package jwt

import (
	"strings"

	"filmmate/pkg/logger"
	"filmmate/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUserIDKey 用户ID在gin.Context中的键名（uint）
	ContextUserIDKey = "user_id"
	// ContextUsernameKey 用户名在gin.Context中的键名
	ContextUsernameKey = "username"
	// ContextClaimsKey JWT声明在gin.Context中的键名
	ContextClaimsKey = "jwt_claims"
)

// AuthMiddleware JWT认证中间件
// 从请求头中提取Authorization: Bearer <token>
// 验证token并将用户信息存入gin.Context
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, msg := bearerToken(c)
		if msg != "" {
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		if !s.authenticate(c, tokenString) {
			response.Unauthorized(c, "token无效或已过期")
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuth 可选认证：携带有效token时写入用户信息，否则按匿名用户继续
func (s *JWTService) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, msg := bearerToken(c); msg == "" {
			s.authenticate(c, tokenString)
		}
		c.Next()
	}
}

// bearerToken 提取token，失败时返回提示信息
func bearerToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "缺少Authorization请求头"
	}

	// 检查Bearer前缀
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "Authorization格式错误，应为Bearer <token>"
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return "", "token不能为空"
	}
	return tokenString, ""
}

// authenticate 校验token并写入Context
func (s *JWTService) authenticate(c *gin.Context, tokenString string) bool {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		logger.Warn("JWT验证失败",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		return false
	}

	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextUsernameKey, claims.Username)
	c.Set(ContextClaimsKey, claims)

	logger.Debug("用户访问接口",
		zap.Uint("user_id", claims.UserID),
		zap.String("username", claims.Username),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
	return true
}

// CurrentUserID 从gin.Context中获取用户ID，匿名请求返回 false
func CurrentUserID(c *gin.Context) (uint, bool) {
	if userID, exists := c.Get(ContextUserIDKey); exists {
		if id, ok := userID.(uint); ok && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// GetUsername 从gin.Context中获取用户名
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsernameKey); exists {
		if name, ok := username.(string); ok {
			return name
		}
	}
	return ""
}

// GetClaims 从gin.Context中获取JWT声明
func GetClaims(c *gin.Context) *UserClaims {
	if claims, exists := c.Get(ContextClaimsKey); exists {
		if c, ok := claims.(*UserClaims); ok {
			return c
		}
	}
	return nil
}
