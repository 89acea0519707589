package testutil

import (
	"testing"

	"filmmate/config"
	"filmmate/internal/model"
	"filmmate/internal/repository"
	"filmmate/pkg/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB 每次返回一个独立的内存 sqlite 库，已完成迁移
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// NewStore 基于新的内存库创建仓库集合
func NewStore(t testing.TB) (*repository.Store, *gorm.DB) {
	t.Helper()
	gdb := NewDB(t)
	return repository.NewStore(gdb), gdb
}

// CreateUser 创建测试用户（密码哈希为占位值，不能登录）
func CreateUser(t testing.TB, gdb *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "-"}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

// CreateGenre 创建类型
func CreateGenre(t testing.TB, gdb *gorm.DB, name string) *model.Genre {
	t.Helper()
	g := &model.Genre{Name: name}
	require.NoError(t, gdb.Create(g).Error)
	return g
}

// CreateMovie 创建电影并关联类型
func CreateMovie(t testing.TB, gdb *gorm.DB, m model.Movie, genres ...*model.Genre) *model.Movie {
	t.Helper()
	for _, g := range genres {
		m.Genres = append(m.Genres, *g)
	}
	require.NoError(t, gdb.Create(&m).Error)
	return &m
}
