package handler

import (
	"context"
	"time"

	"filmmate/config"
	"filmmate/internal/repository"
	"filmmate/pkg/jwt"
	"filmmate/pkg/logger"
	"filmmate/pkg/metrics"
	"filmmate/pkg/redis"
	"filmmate/pkg/response"

	"github.com/gin-gonic/gin"
)

// Router 路由依赖
type Router struct {
	Store     *repository.Store
	JWT       *jwt.JWTService
	RateLimit config.RateLimitConfig

	Users   *UserHandler
	Movies  *MovieHandler
	Lists   *ListHandler
	Friends *FriendHandler
	Chat    *ChatHandler
	Admin   *AdminHandler

	// WebSocket 为空时不注册 /ws
	WebSocket gin.HandlerFunc
}

// Engine 创建 gin 引擎并注册全部路由
func (r *Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(logger.RequestLogger())
	engine.Use(logger.ErrorLoggerMiddleware())
	engine.Use(metrics.Middleware())

	engine.GET("/health", r.health)
	engine.GET("/metrics", metrics.Handler())
	if r.WebSocket != nil {
		engine.GET("/ws", r.WebSocket)
	}

	auth := r.JWT.AuthMiddleware()
	optional := r.JWT.OptionalAuth()

	v1 := engine.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			// 公开接口
			users.POST("/register", r.Users.Register)
			users.POST("/login", r.Users.Login)

			users.GET("/me", auth, r.Users.Me)
			users.POST("/me/bio", auth, r.Users.UpdateBio)
			users.GET("/me/watched", auth, r.Users.Watched)
			users.GET("/search", auth, r.Users.Search)
			users.GET("/:id", optional, r.Users.Profile)
		}

		v1.GET("/genres", r.Movies.Genres)
		movies := v1.Group("/movies")
		{
			movies.GET("", r.Movies.Browse)
			movies.GET("/home", r.Movies.Home)
			movies.GET("/:id", optional, r.Movies.Detail)
			movies.GET("/:id/reviews", r.Movies.Reviews)
			movies.POST("/:id/reviews", auth, r.Movies.SubmitReview)
			movies.POST("/:id/watched/toggle", auth, r.Movies.ToggleWatched)
			movies.POST("/:id/mark-watched", auth, r.Movies.MarkWatched)
		}

		lists := v1.Group("/lists", auth)
		{
			lists.GET("", r.Lists.Lists)
			lists.POST("", r.Lists.Create)
			lists.GET("/:id", r.Lists.Get)
			lists.POST("/:id/edit", r.Lists.Update)
			lists.POST("/:id/delete", r.Lists.Delete)
			lists.POST("/:id/movies/:movie_id/add", r.Lists.AddMovie())
			lists.POST("/:id/movies/:movie_id/remove", r.Lists.RemoveMovie())
			lists.POST("/:id/movies/:movie_id/toggle", r.Lists.ToggleMovie())
		}

		watchlist := v1.Group("/watchlist")
		{
			watchlist.GET("", auth, r.Lists.Watchlist)
			watchlist.GET("/:user_id", r.Lists.UserWatchlist)
			watchlist.POST("/:movie_id/add", auth, r.Lists.WatchlistAdd())
			watchlist.POST("/:movie_id/remove", auth, r.Lists.WatchlistRemove())
			watchlist.POST("/:movie_id/toggle", auth, r.Lists.WatchlistToggle())
		}

		friends := v1.Group("/friends", auth)
		{
			friends.GET("", r.Friends.Friends)
			friends.POST("/:user_id/remove", r.Friends.Remove)
		}
		requests := v1.Group("/friend-requests", auth)
		{
			requests.GET("", r.Friends.Requests)
			requests.POST("/send/:user_id", r.Friends.Send)
			requests.POST("/send-by-username", r.Friends.SendByUsername)
			requests.POST("/:id/accept", r.Friends.Accept)
			requests.POST("/:id/decline", r.Friends.Decline)
			requests.POST("/:id/cancel", r.Friends.Cancel)
		}

		chat := []gin.HandlerFunc{}
		if r.RateLimit.ChatRequests > 0 {
			chat = append(chat, redis.RateLimitMiddleware("chat", r.RateLimit.ChatRequests, r.RateLimit.ChatWindow,
				func(c *gin.Context) string { return c.ClientIP() }))
		}
		v1.POST("/chat", append(chat, r.Chat.Chat)...)

		admin := v1.Group("/admin", auth, r.Admin.RequireStaff())
		{
			admin.POST("/ratings/recalculate", r.Admin.RecalculateRatings)
		}
	}
	return engine
}

// health 数据库与Redis状态
func (r *Router) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	dbStatus := "up"
	if err := r.Store.Ping(ctx); err != nil {
		status, dbStatus = "degraded", "down"
	}
	redisStatus := "disabled"
	if redis.Enabled() {
		redisStatus = "up"
		if err := redis.HealthCheck(ctx); err != nil {
			status, redisStatus = "degraded", "down"
		}
	}
	response.Success(c, gin.H{
		"status":   status,
		"database": dbStatus,
		"redis":    redisStatus,
		"time":     time.Now().Format(time.RFC3339),
	})
}
