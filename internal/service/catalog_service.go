package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"filmmate/internal/model"
	"filmmate/internal/repository"
	"filmmate/pkg/logger"
	"filmmate/pkg/metrics"
	"filmmate/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 默认分页与首页数量
const (
	DefaultPageSize   = 12
	ReviewPageSize    = 10
	homeSectionSize   = 8
	detailReviewCount = 5
)

// CatalogParams 目录查询参数（原始输入）
type CatalogParams struct {
	Q     string
	Genre string
	Sort  string
	Page  string
}

// CatalogPage 一页目录结果
type CatalogPage struct {
	Movies     []model.Movie `json:"movies"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int64         `json:"total"`
	Q          string        `json:"q"`
	Genre      string        `json:"genre"`
	Sort       string        `json:"sort"`
}

// Home 首页数据
type Home struct {
	TopRated []model.Movie
	Newest   []model.Movie
}

// MovieDetail 电影详情；登录用户额外包含待看、已看及所在片单
type MovieDetail struct {
	Movie         *model.Movie
	RecentReviews []model.Review
	ReviewCount   int64
	Viewer        *ViewerState
}

// ViewerState 当前用户与电影的关系
type ViewerState struct {
	InWatchlist bool
	Watched     bool
	ListIDs     []uint
}

// ReviewPage 一页影评
type ReviewPage struct {
	Reviews    []model.Review
	Page       int
	TotalPages int
	Total      int64
}

type CatalogService struct {
	store    *repository.Store
	pageSize int
	useCache bool
}

// NewCatalogService 创建目录服务；useCache 为 true 时列表页经 Redis 缓存
func NewCatalogService(store *repository.Store, pageSize int, useCache bool) *CatalogService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &CatalogService{store: store, pageSize: pageSize, useCache: useCache}
}

// Browse 按片名、类型过滤并分页
// 排序字段不在白名单时回落到片名，页码越界时收敛到最后一页
func (s *CatalogService) Browse(ctx context.Context, params CatalogParams) (*CatalogPage, error) {
	q := strings.TrimSpace(params.Q)
	genre := strings.TrimSpace(params.Genre)
	sort := repository.NormalizeSort(params.Sort)
	requested := ParsePage(params.Page)

	cacheKey := fmt.Sprintf("q=%s&genre=%s&sort=%s&page=%d&size=%d",
		strings.ToLower(q), strings.ToLower(genre), sort, requested, s.pageSize)
	if s.useCache {
		var cached CatalogPage
		hit, err := redis.GetCatalogPage(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn("读取目录缓存失败", zap.Error(err))
		}
		metrics.RecordCatalogCache(hit)
		if hit {
			return &cached, nil
		}
	}

	total, err := s.store.Movies.Count(ctx, q, genre)
	if err != nil {
		return nil, err
	}
	page, totalPages := ClampPage(requested, total, s.pageSize)

	movies := []model.Movie{}
	if total > 0 {
		movies, err = s.store.Movies.Search(ctx, repository.CatalogQuery{
			Q:      q,
			Genre:  genre,
			Sort:   sort,
			Offset: (page - 1) * s.pageSize,
			Limit:  s.pageSize,
		})
		if err != nil {
			return nil, err
		}
	}

	result := &CatalogPage{
		Movies:     movies,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Q:          q,
		Genre:      genre,
		Sort:       sort,
	}
	if s.useCache {
		if err := redis.SetCatalogPage(ctx, cacheKey, result); err != nil {
			logger.Warn("写入目录缓存失败", zap.Error(err))
		}
	}
	return result, nil
}

// Home 评分最高与最新的电影
func (s *CatalogService) Home(ctx context.Context) (*Home, error) {
	top, err := s.store.Movies.TopRated(ctx, "", homeSectionSize)
	if err != nil {
		return nil, err
	}
	newest, err := s.store.Movies.Newest(ctx, homeSectionSize)
	if err != nil {
		return nil, err
	}
	return &Home{TopRated: top, Newest: newest}, nil
}

// Detail 电影详情；viewerID 为 0 表示匿名
func (s *CatalogService) Detail(ctx context.Context, viewerID, movieID uint) (*MovieDetail, error) {
	movie, err := s.store.Movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	reviews, err := s.store.Reviews.ListByMovie(ctx, movieID, 0, detailReviewCount)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Reviews.CountByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	detail := &MovieDetail{Movie: movie, RecentReviews: reviews, ReviewCount: total}
	if viewerID == 0 {
		return detail, nil
	}

	state := &ViewerState{}
	if watchlist, err := s.store.Lists.FindWatchlist(ctx, viewerID); err == nil {
		if state.InWatchlist, err = s.store.Lists.HasMovie(ctx, watchlist.ID, movieID); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if state.Watched, err = s.store.Watched.Exists(ctx, viewerID, movieID); err != nil {
		return nil, err
	}
	if state.ListIDs, err = s.store.Lists.ListIDsContaining(ctx, viewerID, movieID); err != nil {
		return nil, err
	}
	detail.Viewer = state
	return detail, nil
}

// Reviews 电影影评分页，新的在前
func (s *CatalogService) Reviews(ctx context.Context, movieID uint, rawPage string) (*ReviewPage, error) {
	exists, err := s.store.Movies.Exists(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	requested := ParsePage(rawPage)
	total, err := s.store.Reviews.CountByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	page, totalPages := ClampPage(requested, total, ReviewPageSize)
	reviews, err := s.store.Reviews.ListByMovie(ctx, movieID, (page-1)*ReviewPageSize, ReviewPageSize)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{Reviews: reviews, Page: page, TotalPages: totalPages, Total: total}, nil
}

// Genres 全部类型
func (s *CatalogService) Genres(ctx context.Context) ([]model.Genre, error) {
	return s.store.Movies.ListGenres(ctx)
}
