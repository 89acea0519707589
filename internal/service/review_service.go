package service

import (
	"context"
	"math"
	"strings"
	"time"

	"filmmate/internal/model"
	"filmmate/internal/repository"
	"filmmate/pkg/logger"
	"filmmate/pkg/metrics"
	"filmmate/pkg/redis"

	"go.uber.org/zap"
)

// MaxReviewLength 影评最大长度
const MaxReviewLength = 5000

type ReviewService struct {
	store *repository.Store
}

func NewReviewService(store *repository.Store) *ReviewService {
	return &ReviewService{store: store}
}

// RoundRating 保留一位小数
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// Submit 提交影评并重算电影评分
// 同一用户可多次评论同一部电影，每次都新增一条
func (s *ReviewService) Submit(ctx context.Context, userID, movieID uint, rating int, text string) (*model.Review, float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, 0, invalid("review text is required")
	}
	if len([]rune(text)) > MaxReviewLength {
		return nil, 0, invalid("review text is too long")
	}
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, 0, invalid("rating must be between 1 and 10")
	}

	review := &model.Review{UserID: userID, MovieID: movieID, Rating: rating, Text: text}
	var newRating float64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Movies.Exists(ctx, movieID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		if err := tx.Reviews.Create(ctx, review); err != nil {
			return err
		}
		newRating, err = recalculate(ctx, tx, movieID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	invalidateCatalog(ctx)
	logger.Info("提交影评", zap.Uint("user_id", userID), zap.Uint("movie_id", movieID), zap.Float64("rating", newRating))
	return review, newRating, nil
}

// Recalculate 重算单部电影评分
func (s *ReviewService) Recalculate(ctx context.Context, movieID uint) (float64, error) {
	exists, err := s.store.Movies.Exists(ctx, movieID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}
	rating, err := recalculate(ctx, s.store, movieID)
	if err != nil {
		return 0, err
	}
	invalidateCatalog(ctx)
	return rating, nil
}

// RecalculateAll 批量重算全部电影评分，progress 可为 nil
func (s *ReviewService) RecalculateAll(ctx context.Context, progress func(movieID uint, rating float64)) (int, error) {
	ids, err := s.store.Movies.AllIDs(ctx)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		rating, err := recalculate(ctx, s.store, id)
		if err != nil {
			return done, err
		}
		done++
		if progress != nil {
			progress(id, rating)
		}
	}

	invalidateCatalog(ctx)
	logger.Info("评分批量重算完成", zap.Int("movies", done))
	return done, nil
}

// recalculate 平均分保留一位小数，无评论为 0
func recalculate(ctx context.Context, store *repository.Store, movieID uint) (float64, error) {
	avg, total, err := store.Reviews.AverageRating(ctx, movieID)
	if err != nil {
		return 0, err
	}
	rating := 0.0
	if total > 0 {
		rating = RoundRating(avg)
	}
	if err := store.Movies.UpdateRating(ctx, movieID, rating, time.Now()); err != nil {
		return 0, err
	}
	metrics.RatingRecalculations.Inc()
	return rating, nil
}

// invalidateCatalog 评分变化后使目录缓存失效，失败只记录日志
func invalidateCatalog(ctx context.Context) {
	if !redis.Enabled() {
		return
	}
	if err := redis.InvalidateCatalog(ctx); err != nil {
		logger.Warn("目录缓存失效失败", zap.Error(err))
	}
}
