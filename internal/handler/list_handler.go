package handler

import (
	"filmmate/internal/service"
	"filmmate/pkg/response"

	"github.com/gin-gonic/gin"
)

type ListHandler struct {
	service *service.ListService
}

func NewListHandler(s *service.ListService) *ListHandler {
	return &ListHandler{service: s}
}

type listRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MovieIDs    []uint `json:"movie_ids"`
}

func (r listRequest) input() service.ListInput {
	return service.ListInput{Name: r.Name, Description: r.Description, MovieIDs: r.MovieIDs}
}

// Lists 自己的全部片单，待看片单在最前
func (h *ListHandler) Lists(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	lists, err := h.service.Lists(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterLists(lists))
}

// Create 新建片单
func (h *ListHandler) Create(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var r listRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	list, err := h.service.Create(c.Request.Context(), userID, r.input())
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "片单已创建", response.FilterList(list))
}

// Get 片单详情
func (h *ListHandler) Get(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	listID, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.service.Get(c.Request.Context(), userID, listID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterList(list))
}

// Update 编辑片单，movie_ids 替换原有内容
func (h *ListHandler) Update(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	listID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var r listRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	list, err := h.service.Update(c.Request.Context(), userID, listID, r.input())
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "片单已更新", response.FilterList(list))
}

// Delete 删除片单
func (h *ListHandler) Delete(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	listID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, listID); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "片单已删除", nil)
}

// membership 片单内电影的 add/remove/toggle
func (h *ListHandler) membership(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := mustUser(c)
		if !ok {
			return
		}
		listID, ok := paramID(c, "id")
		if !ok {
			return
		}
		movieID, ok := paramID(c, "movie_id")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		var (
			inList bool
			err    error
		)
		switch action {
		case "add":
			err = h.service.AddMovie(ctx, userID, listID, movieID)
			inList = true
		case "remove":
			err = h.service.RemoveMovie(ctx, userID, listID, movieID)
		default:
			inList, err = h.service.ToggleMovie(ctx, userID, listID, movieID)
		}
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, gin.H{"list_id": listID, "movie_id": movieID, "in_list": inList})
	}
}

func (h *ListHandler) AddMovie() gin.HandlerFunc    { return h.membership("add") }
func (h *ListHandler) RemoveMovie() gin.HandlerFunc { return h.membership("remove") }
func (h *ListHandler) ToggleMovie() gin.HandlerFunc { return h.membership("toggle") }

// Watchlist 自己的待看片单
func (h *ListHandler) Watchlist(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	list, err := h.service.Watchlist(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterList(list))
}

// UserWatchlist 其他用户的待看片单
func (h *ListHandler) UserWatchlist(c *gin.Context) {
	ownerID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	owner, list, err := h.service.WatchlistOf(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"owner":     response.FilterPublicUser(owner),
		"watchlist": response.FilterList(list),
	})
}

// watchlistAction 待看片单的 add/remove/toggle
func (h *ListHandler) watchlistAction(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := mustUser(c)
		if !ok {
			return
		}
		movieID, ok := paramID(c, "movie_id")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		var (
			inList bool
			err    error
		)
		switch action {
		case "add":
			err = h.service.WatchlistAdd(ctx, userID, movieID)
			inList = true
		case "remove":
			err = h.service.WatchlistRemove(ctx, userID, movieID)
		default:
			inList, err = h.service.WatchlistToggle(ctx, userID, movieID)
		}
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, gin.H{"movie_id": movieID, "in_watchlist": inList})
	}
}

func (h *ListHandler) WatchlistAdd() gin.HandlerFunc    { return h.watchlistAction("add") }
func (h *ListHandler) WatchlistRemove() gin.HandlerFunc { return h.watchlistAction("remove") }
func (h *ListHandler) WatchlistToggle() gin.HandlerFunc { return h.watchlistAction("toggle") }
