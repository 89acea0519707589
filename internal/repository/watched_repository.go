package repository

import (
	"context"
	"time"

	"filmmate/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchedRepository struct {
	orm *gorm.DB
}

// Insert 标记已看；已存在时不做修改，返回是否新插入
func (r *WatchedRepository) Insert(ctx context.Context, userID, movieID uint, at time.Time) (bool, error) {
	res := r.orm.WithContext(ctx).
		Omit("Movie").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.WatchedMovie{UserID: userID, MovieID: movieID, WatchedAt: at})
	return res.RowsAffected > 0, res.Error
}

// Delete 取消已看，返回是否删除了记录
func (r *WatchedRepository) Delete(ctx context.Context, userID, movieID uint) (bool, error) {
	res := r.orm.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&model.WatchedMovie{})
	return res.RowsAffected > 0, res.Error
}

func (r *WatchedRepository) Exists(ctx context.Context, userID, movieID uint) (bool, error) {
	var count int64
	err := r.orm.WithContext(ctx).Model(&model.WatchedMovie{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(&count).Error
	return count > 0, err
}

// CountByUser 已看电影数
func (r *WatchedRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.orm.WithContext(ctx).Model(&model.WatchedMovie{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

// ListByUser 已看电影，最近标记的在前
func (r *WatchedRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]model.WatchedMovie, error) {
	var items []model.WatchedMovie
	err := r.orm.WithContext(ctx).
		Preload("Movie").
		Where("user_id = ?", userID).
		Order("watched_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, err
}
