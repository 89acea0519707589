package repository

import (
	"context"

	"filmmate/internal/model"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	orm *gorm.DB
}

func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.orm.WithContext(ctx).Omit("User").Create(review).Error
}

// AverageRating 电影全部评分的平均值与条数
func (r *ReviewRepository) AverageRating(ctx context.Context, movieID uint) (float64, int64, error) {
	var row struct {
		Avg   *float64
		Total int64
	}
	err := r.orm.WithContext(ctx).Model(&model.Review{}).
		Select("AVG(rating) AS avg, COUNT(*) AS total").
		Where("movie_id = ?", movieID).
		Scan(&row).Error
	if err != nil || row.Avg == nil {
		return 0, row.Total, err
	}
	return *row.Avg, row.Total, nil
}

// CountByMovie 电影的评论数
func (r *ReviewRepository) CountByMovie(ctx context.Context, movieID uint) (int64, error) {
	var total int64
	err := r.orm.WithContext(ctx).Model(&model.Review{}).Where("movie_id = ?", movieID).Count(&total).Error
	return total, err
}

// ListByMovie 电影的评论，新的在前
func (r *ReviewRepository) ListByMovie(ctx context.Context, movieID uint, offset, limit int) ([]model.Review, error) {
	var reviews []model.Review
	err := r.orm.WithContext(ctx).
		Preload("User").
		Where("movie_id = ?", movieID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}
