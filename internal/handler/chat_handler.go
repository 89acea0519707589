package handler

import (
	"net/http"

	"filmmate/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *service.ChatService
}

func NewChatHandler(s *service.ChatService) *ChatHandler {
	return &ChatHandler{service: s}
}

// Chat 聊天推荐；直接返回 {reply, movies}，不走统一响应包装
// 请求体无法解析时按空消息处理
func (h *ChatHandler) Chat(c *gin.Context) {
	var r struct {
		Message string `json:"message"`
	}
	_ = c.ShouldBindJSON(&r)

	c.JSON(http.StatusOK, h.service.Reply(c.Request.Context(), r.Message))
}
