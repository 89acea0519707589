package handler

import (
	"errors"
	"strconv"

	"filmmate/internal/service"
	"filmmate/pkg/jwt"
	"filmmate/pkg/logger"
	"filmmate/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError 把业务错误映射为统一响应
func writeError(c *gin.Context, err error) {
	var (
		verr *service.ValidationError
		cerr *service.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, verr.Message)
	case errors.As(err, &cerr):
		response.Conflict(c, cerr.Message)
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, "permission denied")
	default:
		logger.Error("请求处理失败", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		response.InternalError(c, "internal server error", err)
	}
}

// paramID 解析路径中的正整数ID，失败时直接写出 400
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// mustUser 当前登录用户ID，路由已挂 AuthMiddleware
func mustUser(c *gin.Context) (uint, bool) {
	userID, ok := jwt.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return 0, false
	}
	return userID, true
}

// viewerID 可选登录时的当前用户，匿名为 0
func viewerID(c *gin.Context) uint {
	userID, _ := jwt.CurrentUserID(c)
	return userID
}
