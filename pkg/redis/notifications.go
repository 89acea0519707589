package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// 待推送通知相关常量
const (
	NotificationsKeyPrefix = keyPrefix + "notify:" // 待推送通知key前缀
	NotificationsTTL       = 7 * 24 * time.Hour    // 7天过期
	MaxNotifications       = 100                   // 每个用户最多保留条数
)

func notificationsKey(userID uint) string {
	return fmt.Sprintf("%s%d", NotificationsKeyPrefix, userID)
}

// AddNotification 保存一条用户离线期间产生的通知（原始JSON）
func AddNotification(ctx context.Context, userID uint, payload []byte) error {
	if client == nil {
		return ErrDisabled
	}

	key := notificationsKey(userID)

	// RPUSH 保持时间顺序，超出上限时丢弃最旧的
	pipe := client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -MaxNotifications, -1)
	pipe.Expire(ctx, key, NotificationsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("添加待推送通知失败: %w", err)
	}

	return nil
}

// PopNotifications 取出并清空用户的待推送通知，按产生顺序返回
func PopNotifications(ctx context.Context, userID uint) ([][]byte, error) {
	if client == nil {
		return nil, ErrDisabled
	}

	key := notificationsKey(userID)

	pipe := client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("获取待推送通知失败: %w", err)
	}

	items := rangeCmd.Val()
	result := make([][]byte, 0, len(items))
	for _, item := range items {
		// 跳过无法解析的数据
		if !json.Valid([]byte(item)) {
			continue
		}
		result = append(result, []byte(item))
	}
	return result, nil
}

// CountNotifications 获取用户待推送通知数量
func CountNotifications(ctx context.Context, userID uint) (int64, error) {
	if client == nil {
		return 0, ErrDisabled
	}

	count, err := client.LLen(ctx, notificationsKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("获取待推送通知数量失败: %w", err)
	}
	return count, nil
}
