package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// PresenceData 在线状态数据
type PresenceData struct {
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	LastSeen time.Time `json:"last_seen"`
}

// 在线状态相关常量
const (
	PresenceKeyPrefix = keyPrefix + "presence:user:" // 用户在线状态key前缀
	PresenceTTL       = 2 * time.Minute              // 在线状态TTL（2倍心跳周期）
)

func presenceKey(userID uint) string {
	return fmt.Sprintf("%s%d", PresenceKeyPrefix, userID)
}

// SetUserOnline 标记用户在线（WebSocket 建立连接时调用）
func SetUserOnline(ctx context.Context, userID uint, username string) error {
	if client == nil {
		return ErrDisabled
	}

	data, err := json.Marshal(PresenceData{
		UserID:   userID,
		Username: username,
		LastSeen: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("序列化在线状态失败: %w", err)
	}

	// 设置用户状态，带TTL，心跳中断后自动过期
	if err := client.Set(ctx, presenceKey(userID), data, PresenceTTL).Err(); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}
	return nil
}

// GetUserPresence 获取用户在线状态
func GetUserPresence(ctx context.Context, userID uint) (*PresenceData, error) {
	if client == nil {
		return nil, ErrDisabled
	}

	data, err := client.Get(ctx, presenceKey(userID)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("获取用户在线状态失败: %w", err)
	}

	var presence PresenceData
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("反序列化在线状态失败: %w", err)
	}

	return &presence, nil
}

// OnlineStatus 批量查询在线状态；Redis 不可用时全部视为离线
func OnlineStatus(ctx context.Context, userIDs []uint) map[uint]bool {
	result := make(map[uint]bool, len(userIDs))
	if client == nil || len(userIDs) == 0 {
		return result
	}

	pipe := client.Pipeline()
	cmds := make(map[uint]*redis.IntCmd, len(userIDs))
	for _, id := range userIDs {
		cmds[id] = pipe.Exists(ctx, presenceKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return result
	}

	for id, cmd := range cmds {
		result[id] = cmd.Val() > 0
	}
	return result
}

// RefreshUserPresence 刷新用户在线状态（延长TTL）
func RefreshUserPresence(ctx context.Context, userID uint) error {
	if client == nil {
		return ErrDisabled
	}

	ok, err := client.Expire(ctx, presenceKey(userID), PresenceTTL).Result()
	if err != nil {
		return fmt.Errorf("刷新用户在线状态失败: %w", err)
	}
	if !ok {
		return fmt.Errorf("用户不在线")
	}
	return nil
}

// RemoveUserPresence 移除用户在线状态
func RemoveUserPresence(ctx context.Context, userID uint) error {
	if client == nil {
		return ErrDisabled
	}

	if err := client.Del(ctx, presenceKey(userID)).Err(); err != nil {
		return fmt.Errorf("删除用户在线状态失败: %w", err)
	}
	return nil
}
