package handler

import (
	"filmmate/internal/service"
	"filmmate/pkg/response"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	service *service.FriendService
}

func NewFriendHandler(s *service.FriendService) *FriendHandler {
	return &FriendHandler{service: s}
}

// Friends 好友列表及在线状态
func (h *FriendHandler) Friends(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	friends, err := h.service.Friends(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]gin.H, 0, len(friends))
	for i := range friends {
		items = append(items, gin.H{
			"user":   response.FilterPublicUser(&friends[i].User),
			"online": friends[i].Online,
		})
	}
	response.Success(c, items)
}

// Requests 收到和发出的请求
func (h *FriendHandler) Requests(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	reqs, err := h.service.Requests(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"incoming": response.FilterFriendRequests(reqs.Incoming),
		"outgoing": response.FilterFriendRequests(reqs.Outgoing),
	})
}

// Send 按用户ID发送请求
func (h *FriendHandler) Send(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	toID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	req, err := h.service.Send(c.Request.Context(), userID, toID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "好友请求已发送", response.FilterFriendRequest(req))
}

// SendByUsername 按用户名发送请求
func (h *FriendHandler) SendByUsername(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var r struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req, err := h.service.SendByUsername(c.Request.Context(), userID, r.Username)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "好友请求已发送", response.FilterFriendRequest(req))
}

// Accept 接受请求
func (h *FriendHandler) Accept(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	reqID, ok := paramID(c, "id")
	if !ok {
		return
	}
	from, err := h.service.Accept(c.Request.Context(), userID, reqID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已成为好友", gin.H{"friend": response.FilterPublicUser(from)})
}

// Decline 拒绝请求
func (h *FriendHandler) Decline(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	reqID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Decline(c.Request.Context(), userID, reqID); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已拒绝", nil)
}

// Cancel 撤回请求
func (h *FriendHandler) Cancel(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	reqID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), userID, reqID); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已撤回", nil)
}

// Remove 解除好友
func (h *FriendHandler) Remove(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	friendID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), userID, friendID); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已解除好友关系", nil)
}
