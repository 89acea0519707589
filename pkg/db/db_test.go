package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"filmmate/config"
	"filmmate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(gdb))

	for _, table := range []string{"user", "movie", "genre", "list", "list_movie", "movie_genre", "review", "watched_movie", "friendship", "friend_request"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
}

func TestUniqueConstraintTranslated(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(gdb))

	require.NoError(t, gdb.Create(&model.WatchedMovie{UserID: 1, MovieID: 1}).Error)
	err = gdb.Create(&model.WatchedMovie{UserID: 1, MovieID: 1}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFound(errors.New("other")))
	assert.False(t, IsDuplicateKey(nil))
}

func TestHealthCheckWithoutInit(t *testing.T) {
	DB = nil
	assert.Error(t, HealthCheck())
	assert.Error(t, AutoMigrate(nil))
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := newGormLogger(zap.New(core), false)
	sql := func() (string, int64) { return "SELECT * FROM `list` WHERE kind = 'watchlist'", 0 }

	gl.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	gl.Trace(context.Background(), time.Now(), sql, errors.New("no such table: list"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Contains(t, logs.All()[0].Message, "no such table")

	// 未开启SQL日志时普通查询不输出
	gl.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 1, logs.Len())
}

func TestOpenMissingRowIsQuiet(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(gdb))

	var l model.List
	err = gdb.Where("user_id = ? AND kind = ?", 1, model.ListKindWatchlist).First(&l).Error
	assert.True(t, IsNotFound(err))
}
