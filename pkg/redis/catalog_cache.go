package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// 目录缓存相关常量
// 缓存键带版本号，写操作只需递增版本，旧版本数据随TTL自然过期
const (
	CatalogVersionKey   = keyPrefix + "catalog:version"
	CatalogKeyPrefix    = keyPrefix + "catalog:"
	DefaultCatalogTTL   = time.Minute
	catalogVersionStart = "0"
)

// CatalogTTL 目录页缓存时间（从配置文件获取）
var CatalogTTL = DefaultCatalogTTL

// SetCatalogTTL 设置目录缓存时间
func SetCatalogTTL(ttl time.Duration) {
	if ttl > 0 {
		CatalogTTL = ttl
	}
}

func catalogVersion(ctx context.Context) (string, error) {
	v, err := client.Get(ctx, CatalogVersionKey).Result()
	if errors.Is(err, redis.Nil) {
		return catalogVersionStart, nil
	}
	return v, err
}

func catalogKey(ctx context.Context, key string) (string, error) {
	v, err := catalogVersion(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sv%s:%s", CatalogKeyPrefix, v, key), nil
}

// GetCatalogPage 读取缓存的目录页，命中返回 true
func GetCatalogPage(ctx context.Context, key string, dest interface{}) (bool, error) {
	if client == nil {
		return false, ErrDisabled
	}

	fullKey, err := catalogKey(ctx, key)
	if err != nil {
		return false, fmt.Errorf("获取目录缓存版本失败: %w", err)
	}

	data, err := client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("读取目录缓存失败: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// 数据损坏时直接丢弃
		_ = client.Del(ctx, fullKey).Err()
		return false, nil
	}
	return true, nil
}

// SetCatalogPage 写入目录页缓存
func SetCatalogPage(ctx context.Context, key string, value interface{}) error {
	if client == nil {
		return ErrDisabled
	}

	fullKey, err := catalogKey(ctx, key)
	if err != nil {
		return fmt.Errorf("获取目录缓存版本失败: %w", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化目录缓存失败: %w", err)
	}

	if err := client.Set(ctx, fullKey, data, CatalogTTL).Err(); err != nil {
		return fmt.Errorf("写入目录缓存失败: %w", err)
	}
	return nil
}

// InvalidateCatalog 使全部目录缓存失效（评分变化后调用）
func InvalidateCatalog(ctx context.Context) error {
	if client == nil {
		return ErrDisabled
	}

	if err := client.Incr(ctx, CatalogVersionKey).Err(); err != nil {
		return fmt.Errorf("更新目录缓存版本失败: %w", err)
	}
	return nil
}
