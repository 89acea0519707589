package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filmmate/config"
	"filmmate/internal/chat"
	"filmmate/internal/handler"
	"filmmate/internal/repository"
	"filmmate/internal/service"
	dbPkg "filmmate/pkg/db"
	"filmmate/pkg/jwt"
	"filmmate/pkg/llm"
	"filmmate/pkg/logger"
	"filmmate/pkg/redis"
	"filmmate/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== FilmMate 启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("llm_base_url", cfg.LLM.BaseURL),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	gdb, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	if err := dbPkg.AutoMigrate(gdb); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("数据库就绪")

	// 4. Redis 可选，失败时降级运行
	if cfg.Redis.Enabled {
		if err := redis.InitRedis(cfg.Redis); err != nil {
			log.Warn("Redis连接失败，缓存、限流与在线状态将降级", zap.Error(err))
		} else {
			redis.SetCatalogTTL(cfg.Catalog.CacheTTL)
			defer redis.Close()
		}
	}

	// 5. 组装服务
	store := repository.NewStore(gdb)
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	wsManager := websocket.NewManager()

	users := service.NewUserService(store, jwtSvc)
	watched := service.NewWatchedService(store)
	reviews := service.NewReviewService(store)
	catalog := service.NewCatalogService(store, cfg.Catalog.PageSize, redis.Enabled())
	lists := service.NewListService(store)
	friends := service.NewFriendService(store, wsManager)
	chatSvc := newChatService(cfg, store)

	router := &handler.Router{
		Store:     store,
		JWT:       jwtSvc,
		RateLimit: cfg.RateLimit,
		Users:     handler.NewUserHandler(users, watched),
		Movies:    handler.NewMovieHandler(catalog, reviews, watched),
		Lists:     handler.NewListHandler(lists),
		Friends:   handler.NewFriendHandler(friends),
		Chat:      handler.NewChatHandler(chatSvc),
		Admin:     handler.NewAdminHandler(users, reviews),
		WebSocket: websocket.NewHandler(jwtSvc, wsManager, cfg.WebSocket).ServeWS,
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 6. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 7. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}
	log.Info("服务器已安全关闭")
}

// newChatService 配置了推理服务时使用模型解析与回复，否则使用规则解析和模板回复
func newChatService(cfg *config.Config, store *repository.Store) *service.ChatService {
	if cfg.LLM.BaseURL == "" {
		logger.Info("未配置推理服务，聊天使用规则解析")
		return service.NewChatService(store, chat.NewGenreExtractor(store.Movies), chat.TemplateSummarizer{}, cfg.Chat.MaxResults)
	}
	client := llm.NewClient(cfg.LLM)
	return service.NewChatService(store,
		chat.NewLLMExtractor(client, cfg.LLM.IntentTemperature),
		chat.NewLLMSummarizer(client, cfg.LLM.ReplyTemperature),
		cfg.Chat.MaxResults,
	)
}
