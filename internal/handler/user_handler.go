package handler

import (
	"filmmate/internal/service"
	"filmmate/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *service.UserService
	watched *service.WatchedService
}

func NewUserHandler(s *service.UserService, watched *service.WatchedService) *UserHandler {
	return &UserHandler{service: s, watched: watched}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Register(c.Request.Context(), r.Username, r.Email, r.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功", &response.AuthResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Login(c.Request.Context(), r.Username, r.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.AuthResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Me 当前用户资料
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), userID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user":         response.FilterUserInfo(profile.User),
		"friend_count": profile.FriendCount,
	})
}

// UpdateBio 修改个人简介
func (h *UserHandler) UpdateBio(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var r struct {
		Bio string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.service.UpdateBio(c.Request.Context(), userID, r.Bio)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "简介已更新", response.FilterUserInfo(user))
}

// Search 按用户名搜索
func (h *UserHandler) Search(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	matches, err := h.service.Search(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}

	users := make([]gin.H, 0, len(matches))
	for i := range matches {
		users = append(users, gin.H{
			"user":         response.FilterPublicUser(&matches[i].User),
			"relationship": matches[i].Relationship,
		})
	}
	response.Success(c, gin.H{"q": c.Query("q"), "users": users})
}

// Profile 公开资料
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), viewerID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user":         response.FilterPublicUser(profile.User),
		"friend_count": profile.FriendCount,
		"relationship": profile.Relationship,
	})
}

// Watched 已看电影，最近标记在前
func (h *UserHandler) Watched(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	page, err := h.watched.List(c.Request.Context(), userID, c.Query("page"))
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]gin.H, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, gin.H{
			"movie":      response.FilterMovie(&page.Items[i].Movie),
			"watched_at": page.Items[i].WatchedAt,
		})
	}
	response.Success(c, gin.H{
		"items":       items,
		"page":        page.Page,
		"total_pages": page.TotalPages,
		"total":       page.Total,
	})
}
