package handler

import (
	"filmmate/internal/service"
	"filmmate/pkg/response"

	"github.com/gin-gonic/gin"
)

// MovieHandler 电影目录、影评与已看标记
type MovieHandler struct {
	catalog *service.CatalogService
	reviews *service.ReviewService
	watched *service.WatchedService
}

func NewMovieHandler(catalog *service.CatalogService, reviews *service.ReviewService, watched *service.WatchedService) *MovieHandler {
	return &MovieHandler{catalog: catalog, reviews: reviews, watched: watched}
}

// Browse 目录列表：q 片名子串，genre 类型名，sort 排序字段，page 页码
func (h *MovieHandler) Browse(c *gin.Context) {
	page, err := h.catalog.Browse(c.Request.Context(), service.CatalogParams{
		Q:     c.Query("q"),
		Genre: c.Query("genre"),
		Sort:  c.Query("sort"),
		Page:  c.Query("page"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"movies":      response.FilterMovies(page.Movies),
		"page":        page.Page,
		"total_pages": page.TotalPages,
		"total":       page.Total,
		"q":           page.Q,
		"genre":       page.Genre,
		"sort":        page.Sort,
	})
}

// Home 首页
func (h *MovieHandler) Home(c *gin.Context) {
	home, err := h.catalog.Home(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"top_rated": response.FilterMovies(home.TopRated),
		"newest":    response.FilterMovies(home.Newest),
	})
}

// Detail 电影详情
func (h *MovieHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.catalog.Detail(c.Request.Context(), viewerID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	data := gin.H{
		"movie":          response.FilterMovieDetail(detail.Movie),
		"recent_reviews": response.FilterReviews(detail.RecentReviews),
		"review_count":   detail.ReviewCount,
	}
	if v := detail.Viewer; v != nil {
		listIDs := v.ListIDs
		if listIDs == nil {
			listIDs = []uint{}
		}
		data["in_watchlist"] = v.InWatchlist
		data["watched"] = v.Watched
		data["list_ids"] = listIDs
	}
	response.Success(c, data)
}

// Reviews 影评分页
func (h *MovieHandler) Reviews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, err := h.catalog.Reviews(c.Request.Context(), id, c.Query("page"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"reviews":     response.FilterReviews(page.Reviews),
		"page":        page.Page,
		"total_pages": page.TotalPages,
		"total":       page.Total,
	})
}

// SubmitReview 提交影评
func (h *MovieHandler) SubmitReview(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var r struct {
		Rating int    `json:"rating"`
		Text   string `json:"text"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, rating, err := h.reviews.Submit(c.Request.Context(), userID, id, r.Rating, r.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "影评已发布", gin.H{
		"review":       response.FilterReview(review),
		"movie_rating": rating,
	})
}

// Genres 全部类型
func (h *MovieHandler) Genres(c *gin.Context) {
	genres, err := h.catalog.Genres(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterGenres(genres))
}

// ToggleWatched 切换已看
func (h *MovieHandler) ToggleWatched(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	watched, err := h.watched.Toggle(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"movie_id": id, "watched": watched})
}

// MarkWatched 详情页的已看按钮，标记为已看时同时移出待看
func (h *MovieHandler) MarkWatched(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	watched, evicted, err := h.watched.MarkFromDetail(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"movie_id":               id,
		"watched":                watched,
		"removed_from_watchlist": evicted,
	})
}
