package websocket

import (
	"context"
	"sync"
	"time"

	"filmmate/pkg/logger"
	"filmmate/pkg/metrics"
	"filmmate/pkg/redis"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 离线通知写入Redis的超时时间
const storeTimeout = 2 * time.Second

// Client 代表一个WebSocket连接的用户
// UserID: 用户ID
// Conn: WebSocket连接
// Send: 发送消息的通道

type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager 管理所有在线用户的WebSocket连接
// 同一用户只保留最新的一个连接；不在线时通知写入Redis，下次连接时补发

type Manager struct {
	clients map[uint]*Client // 在线用户
	lock    sync.RWMutex
}

// NewManager 创建连接管理器
func NewManager() *Manager {
	return &Manager{
		clients: make(map[uint]*Client),
	}
}

// AddClient 添加新连接，旧连接被替换并关闭
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if old, ok := m.clients[client.UserID]; ok {
		close(old.Send)
		if old.Conn != nil {
			_ = old.Conn.Close()
		}
		metrics.WebSocketConnections.Dec()
	}
	m.clients[client.UserID] = client
	metrics.WebSocketConnections.Inc()
}

// RemoveClient 移除连接；若该连接已被新连接替换则忽略
func (m *Manager) RemoveClient(client *Client) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	if c, ok := m.clients[client.UserID]; ok && c == client {
		close(c.Send)
		delete(m.clients, client.UserID)
		metrics.WebSocketConnections.Dec()
		return true
	}
	return false
}

// SendToUser 推送消息给指定用户
// 若用户不在线则存储到Redis待推送通知
func (m *Manager) SendToUser(userID uint, msg []byte) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if client, ok := m.clients[userID]; ok {
		// 在线，直接推送
		select {
		case client.Send <- msg:
			metrics.RecordNotification("pushed")
		default:
			// 发送缓冲已满，连接可能已卡死
			metrics.RecordNotification("dropped")
			logger.Warn("WebSocket发送缓冲已满，丢弃通知", zap.Uint("user_id", userID))
		}
		return
	}

	// 不在线，存储到Redis
	m.storeOffline(userID, msg)
}

// IsOnline 判断用户在本实例是否有活跃连接
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// storeOffline 存储离线通知到Redis
func (m *Manager) storeOffline(userID uint, msg []byte) {
	if !redis.Enabled() {
		metrics.RecordNotification("dropped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := redis.AddNotification(ctx, userID, msg); err != nil {
		metrics.RecordNotification("dropped")
		logger.Warn("保存离线通知失败", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	metrics.RecordNotification("queued")
}

// pushPending 推送离线期间积压的通知
func (m *Manager) pushPending(ctx context.Context, client *Client) {
	if !redis.Enabled() {
		return
	}

	pending, err := redis.PopNotifications(ctx, client.UserID)
	if err != nil {
		logger.Warn("获取离线通知失败", zap.Uint("user_id", client.UserID), zap.Error(err))
		return
	}

	m.lock.RLock()
	defer m.lock.RUnlock()
	// 连接可能已被替换或关闭
	if m.clients[client.UserID] != client {
		return
	}
	for _, msg := range pending {
		select {
		case client.Send <- msg:
			metrics.RecordNotification("pushed")
		default:
			metrics.RecordNotification("dropped")
			return
		}
	}
}
