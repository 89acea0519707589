package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"filmmate/config"
	"filmmate/pkg/jwt"
	"filmmate/pkg/logger"
	"filmmate/pkg/redis"
	"filmmate/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 写超时
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// Handler WebSocket 接入处理器
type Handler struct {
	jwt     *jwt.JWTService
	manager *Manager
	cfg     config.WebSocketConfig
}

// NewHandler 创建 WebSocket 处理器
func NewHandler(jwtSvc *jwt.JWTService, manager *Manager, cfg config.WebSocketConfig) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 2 * cfg.PingInterval
	}
	return &Handler{jwt: jwtSvc, manager: manager, cfg: cfg}
}

// ServeWS Gin路由处理函数，token 通过 query 或子协议传递
func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	claims, err := h.jwt.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	userID, username := claims.UserID, claims.Username

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Warn("WebSocket升级失败", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
	h.manager.AddClient(client)

	// 连接建立后，更新Redis在线状态
	ctx := context.Background()
	if redis.Enabled() {
		_ = redis.SetUserOnline(ctx, userID, username)
	}
	logger.Info("WebSocket连接建立", zap.Uint("user_id", userID))

	defer func() {
		// 只有当前连接仍是该用户的活跃连接时才清除在线状态
		if h.manager.RemoveClient(client) && redis.Enabled() {
			_ = redis.RemoveUserPresence(ctx, userID)
		}
		_ = conn.Close()
		logger.Info("WebSocket连接关闭", zap.Uint("user_id", userID))
	}()

	// 启动写协程 + 定时发送ping心跳
	go h.writePump(client)

	// 推送离线期间的通知
	h.manager.pushPending(ctx, client)

	// 读协程（接收心跳/客户端消息）。若超时未收到任何读事件则断开
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Type == "heartbeat" && redis.Enabled() {
			// 刷新用户在线状态（延长TTL）
			if err := redis.RefreshUserPresence(ctx, userID); err != nil {
				_ = redis.SetUserOnline(ctx, userID, username)
			}
		}
	}
}

// writePump 写协程；Send 通道关闭（连接被移除或替换）时退出
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = client.Conn.Close()
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				_ = client.Conn.Close()
				return
			}
		}
	}
}
