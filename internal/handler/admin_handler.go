package handler

import (
	"filmmate/internal/service"
	"filmmate/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	users   *service.UserService
	reviews *service.ReviewService
}

func NewAdminHandler(users *service.UserService, reviews *service.ReviewService) *AdminHandler {
	return &AdminHandler{users: users, reviews: reviews}
}

// RequireStaff 仅管理员可访问，需挂在 AuthMiddleware 之后
func (h *AdminHandler) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := mustUser(c)
		if !ok {
			c.Abort()
			return
		}
		staff, err := h.users.IsStaff(c.Request.Context(), userID)
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}
		if !staff {
			writeError(c, service.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RecalculateRatings 重算全部电影评分
func (h *AdminHandler) RecalculateRatings(c *gin.Context) {
	count, err := h.reviews.RecalculateAll(c.Request.Context(), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "评分已重算", gin.H{"movies": count})
}
