package service

import (
	"context"
	"errors"
	"time"

	"filmmate/internal/model"
	"filmmate/internal/repository"

	"gorm.io/gorm"
)

// WatchedPageSize 已看列表每页条数
const WatchedPageSize = 20

// WatchedPage 一页已看记录
type WatchedPage struct {
	Items      []model.WatchedMovie
	Page       int
	TotalPages int
	Total      int64
}

type WatchedService struct {
	store *repository.Store
}

func NewWatchedService(store *repository.Store) *WatchedService {
	return &WatchedService{store: store}
}

// Toggle 切换已看状态，返回切换后的状态
// 连续两次切换回到未看
func (s *WatchedService) Toggle(ctx context.Context, userID, movieID uint) (bool, error) {
	var watched bool
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		watched, err = toggleWatched(ctx, tx, userID, movieID)
		return err
	})
	return watched, err
}

// MarkFromDetail 详情页操作：切换已看；标记为已看时同时移出待看片单，两步在同一事务内
func (s *WatchedService) MarkFromDetail(ctx context.Context, userID, movieID uint) (bool, bool, error) {
	var watched, evicted bool
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		watched, err = toggleWatched(ctx, tx, userID, movieID)
		if err != nil || !watched {
			return err
		}

		watchlist, err := tx.Lists.FindWatchlist(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		evicted, err = tx.Lists.RemoveMovie(ctx, watchlist.ID, movieID)
		return err
	})
	return watched, evicted, err
}

// IsWatched 是否已看
func (s *WatchedService) IsWatched(ctx context.Context, userID, movieID uint) (bool, error) {
	return s.store.Watched.Exists(ctx, userID, movieID)
}

// List 已看电影分页，最近标记的在前
func (s *WatchedService) List(ctx context.Context, userID uint, rawPage string) (*WatchedPage, error) {
	requested := ParsePage(rawPage)
	total, err := s.store.Watched.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	page, totalPages := ClampPage(requested, total, WatchedPageSize)
	items, err := s.store.Watched.ListByUser(ctx, userID, (page-1)*WatchedPageSize, WatchedPageSize)
	if err != nil {
		return nil, err
	}
	return &WatchedPage{Items: items, Page: page, TotalPages: totalPages, Total: total}, nil
}

// toggleWatched 先删除，没有删除到再插入；重复插入由唯一索引拒绝并忽略
func toggleWatched(ctx context.Context, tx *repository.Store, userID, movieID uint) (bool, error) {
	exists, err := tx.Movies.Exists(ctx, movieID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}

	removed, err := tx.Watched.Delete(ctx, userID, movieID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	if _, err := tx.Watched.Insert(ctx, userID, movieID, time.Now()); err != nil {
		return false, err
	}
	return true, nil
}
