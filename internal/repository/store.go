package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store 聚合全部仓库；事务内通过 Transaction 拿到绑定同一事务的 Store
type Store struct {
	orm *gorm.DB

	Users   *UserRepository
	Movies  *MovieRepository
	Lists   *ListRepository
	Reviews *ReviewRepository
	Watched *WatchedRepository
	Friends *FriendRepository
}

// NewStore 创建仓库集合
func NewStore(orm *gorm.DB) *Store {
	return &Store{
		orm:     orm,
		Users:   &UserRepository{orm: orm},
		Movies:  &MovieRepository{orm: orm},
		Lists:   &ListRepository{orm: orm},
		Reviews: &ReviewRepository{orm: orm},
		Watched: &WatchedRepository{orm: orm},
		Friends: &FriendRepository{orm: orm},
	}
}

// Transaction 在同一事务中执行 fn，返回错误时整体回滚
// fn 内只能使用传入的 tx，sqlite 单连接下使用外层 Store 会死锁
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping 数据库连通性检查
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.orm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
