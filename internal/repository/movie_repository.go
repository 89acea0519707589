package repository

import (
	"context"
	"strings"
	"time"

	"filmmate/internal/model"

	"gorm.io/gorm"
)

// 目录允许的排序字段，其他值回落到按片名排序
var catalogSorts = map[string]string{
	"title":    "title ASC",
	"year":     "year ASC",
	"director": "director ASC",
}

// DefaultSort 默认排序字段
const DefaultSort = "title"

// CatalogQuery 目录查询条件
type CatalogQuery struct {
	Q      string // 片名子串（不区分大小写）
	Genre  string // 类型名（精确匹配，不区分大小写）
	Sort   string // title / year / director
	Offset int
	Limit  int
}

// NormalizeSort 不在白名单内的排序字段回落到默认值
func NormalizeSort(sort string) string {
	if _, ok := catalogSorts[sort]; ok {
		return sort
	}
	return DefaultSort
}

type MovieRepository struct {
	orm *gorm.DB
}

func (r *MovieRepository) GetByID(ctx context.Context, id uint) (*model.Movie, error) {
	var m model.Movie
	err := r.orm.WithContext(ctx).
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genre.name") }).
		First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MovieRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.orm.WithContext(ctx).Model(&model.Movie{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// GetByIDs 按ID批量查询
func (r *MovieRepository) GetByIDs(ctx context.Context, ids []uint) ([]model.Movie, error) {
	var movies []model.Movie
	if len(ids) == 0 {
		return movies, nil
	}
	err := r.orm.WithContext(ctx).Where("id IN ?", ids).Find(&movies).Error
	return movies, err
}

// filtered 应用片名和类型过滤
func (r *MovieRepository) filtered(ctx context.Context, q, genre string) *gorm.DB {
	tx := r.orm.WithContext(ctx).Model(&model.Movie{})
	if q = strings.TrimSpace(q); q != "" {
		tx = tx.Where("LOWER(movie.title) LIKE ?"+likeEscape, containsPattern(q))
	}
	if genre = strings.TrimSpace(genre); genre != "" {
		sub := r.orm.Table("movie_genre").
			Select("movie_genre.movie_id").
			Joins("JOIN genre ON genre.id = movie_genre.genre_id").
			Where("LOWER(genre.name) = ?", strings.ToLower(genre))
		tx = tx.Where("movie.id IN (?)", sub)
	}
	return tx
}

// Count 统计满足条件的电影数
func (r *MovieRepository) Count(ctx context.Context, q, genre string) (int64, error) {
	var total int64
	err := r.filtered(ctx, q, genre).Count(&total).Error
	return total, err
}

// Search 分页查询目录
func (r *MovieRepository) Search(ctx context.Context, query CatalogQuery) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.filtered(ctx, query.Q, query.Genre).
		Preload("Genres").
		Order(catalogSorts[NormalizeSort(query.Sort)]).
		Order("movie.id ASC").
		Offset(query.Offset).
		Limit(query.Limit).
		Find(&movies).Error
	return movies, err
}

// TopRated 按评分、年份倒序取前 limit 部，genre 为空时不过滤
func (r *MovieRepository) TopRated(ctx context.Context, genre string, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.filtered(ctx, "", genre).
		Order("rating DESC").
		Order("year DESC").
		Order("movie.id ASC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// SearchTitle 片名关键词检索，按评分、年份倒序
func (r *MovieRepository) SearchTitle(ctx context.Context, keyword string, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.filtered(ctx, keyword, "").
		Order("rating DESC").
		Order("year DESC").
		Order("movie.id ASC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// Newest 最新上映
func (r *MovieRepository) Newest(ctx context.Context, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.orm.WithContext(ctx).
		Order("year DESC").
		Order("id DESC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// AllIDs 全部电影ID（批量重算评分使用）
func (r *MovieRepository) AllIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.orm.WithContext(ctx).Model(&model.Movie{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// UpdateRating 写入新的平均分
func (r *MovieRepository) UpdateRating(ctx context.Context, id uint, rating float64, at time.Time) error {
	return r.orm.WithContext(ctx).Model(&model.Movie{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":              rating,
			"rating_last_updated": at,
		}).Error
}

// ListGenres 全部类型，按名称排序
func (r *MovieRepository) ListGenres(ctx context.Context) ([]model.Genre, error) {
	var genres []model.Genre
	err := r.orm.WithContext(ctx).Order("name").Find(&genres).Error
	return genres, err
}

// GenreNames 去重后的类型名
func (r *MovieRepository) GenreNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.orm.WithContext(ctx).Model(&model.Genre{}).Distinct("name").Order("name").Pluck("name", &names).Error
	return names, err
}
