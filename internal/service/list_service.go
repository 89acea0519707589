package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"filmmate/internal/model"
	"filmmate/internal/repository"
	"filmmate/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 片单字段长度限制
const (
	MaxListNameLength        = 100
	MaxListDescriptionLength = 2000
)

// ListInput 创建/编辑片单的输入
type ListInput struct {
	Name        string
	Description string
	MovieIDs    []uint
}

type ListService struct {
	store *repository.Store
}

func NewListService(store *repository.Store) *ListService {
	return &ListService{store: store}
}

// Lists 用户的全部片单
func (s *ListService) Lists(ctx context.Context, userID uint) ([]model.List, error) {
	return s.store.Lists.ListByUser(ctx, userID)
}

// Get 获取自己的片单
func (s *ListService) Get(ctx context.Context, userID, listID uint) (*model.List, error) {
	l, err := s.store.Lists.GetOwned(ctx, listID, userID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return l, nil
}

// Create 创建片单；名称为空或与已有片单重名（不区分大小写）时校验失败
func (s *ListService) Create(ctx context.Context, userID uint, in ListInput) (*model.List, error) {
	name, key, err := validateListInput(in)
	if err != nil {
		return nil, err
	}
	if key == watchlistKey {
		return nil, reservedName(name)
	}

	list := &model.List{
		UserID:      userID,
		Kind:        model.ListKindCustom,
		Name:        name,
		NameKey:     key,
		Description: strings.TrimSpace(in.Description),
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureNameFree(ctx, tx, userID, name, key, 0); err != nil {
			return err
		}
		movieIDs, err := checkMovies(ctx, tx, in.MovieIDs)
		if err != nil {
			return err
		}
		if err := tx.Lists.Create(ctx, list); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return duplicateName(name)
			}
			return err
		}
		return tx.Lists.ReplaceMovies(ctx, list, movieIDs)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("创建片单", zap.Uint("user_id", userID), zap.Uint("list_id", list.ID))
	return s.Get(ctx, userID, list.ID)
}

// Update 编辑片单并用 MovieIDs 替换其内容；重名检查排除自身
func (s *ListService) Update(ctx context.Context, userID, listID uint, in ListInput) (*model.List, error) {
	name, key, err := validateListInput(in)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		list, err := tx.Lists.GetOwned(ctx, listID, userID)
		if err != nil {
			return notFoundOr(err)
		}
		if !list.IsWatchlist() && key == watchlistKey {
			return reservedName(name)
		}
		if err := ensureNameFree(ctx, tx, userID, name, key, list.ID); err != nil {
			return err
		}
		movieIDs, err := checkMovies(ctx, tx, in.MovieIDs)
		if err != nil {
			return err
		}

		list.Name = name
		list.NameKey = key
		list.Description = strings.TrimSpace(in.Description)
		if err := tx.Lists.UpdateInfo(ctx, list); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return duplicateName(name)
			}
			return err
		}
		return tx.Lists.ReplaceMovies(ctx, list, movieIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, listID)
}

// Delete 删除片单，只删除关联行，电影不受影响
func (s *ListService) Delete(ctx context.Context, userID, listID uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		list, err := tx.Lists.GetOwned(ctx, listID, userID)
		if err != nil {
			return notFoundOr(err)
		}
		return tx.Lists.Delete(ctx, list.ID)
	})
}

// AddMovie 加入电影，已在片单中时不做修改
func (s *ListService) AddMovie(ctx context.Context, userID, listID, movieID uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ownedListWithMovie(ctx, tx, userID, listID, movieID); err != nil {
			return err
		}
		_, err := tx.Lists.AddMovie(ctx, listID, movieID)
		return err
	})
}

// RemoveMovie 移除电影，不在片单中时不做修改
func (s *ListService) RemoveMovie(ctx context.Context, userID, listID, movieID uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ownedListWithMovie(ctx, tx, userID, listID, movieID); err != nil {
			return err
		}
		_, err := tx.Lists.RemoveMovie(ctx, listID, movieID)
		return err
	})
}

// ToggleMovie 切换电影是否在片单中，返回切换后的状态
func (s *ListService) ToggleMovie(ctx context.Context, userID, listID, movieID uint) (bool, error) {
	var inList bool
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ownedListWithMovie(ctx, tx, userID, listID, movieID); err != nil {
			return err
		}
		var err error
		inList, err = toggleMembership(ctx, tx, listID, movieID)
		return err
	})
	return inList, err
}

// Watchlist 自己的待看片单，不存在时创建
func (s *ListService) Watchlist(ctx context.Context, userID uint) (*model.List, error) {
	return s.store.Lists.GetOrCreateWatchlist(ctx, userID)
}

// WatchlistOf 查看其他用户的待看片单；对方尚未创建时返回空片单
func (s *ListService) WatchlistOf(ctx context.Context, ownerID uint) (*model.User, *model.List, error) {
	owner, err := s.store.Users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	list, err := s.store.Lists.FindWatchlist(ctx, ownerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return owner, &model.List{
			UserID: ownerID,
			Kind:   model.ListKindWatchlist,
			Name:   model.WatchlistName,
			Movies: []model.Movie{},
		}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return owner, list, nil
}

// WatchlistAdd 加入待看
func (s *ListService) WatchlistAdd(ctx context.Context, userID, movieID uint) error {
	return s.withWatchlist(ctx, userID, movieID, func(tx *repository.Store, listID uint) error {
		_, err := tx.Lists.AddMovie(ctx, listID, movieID)
		return err
	})
}

// WatchlistRemove 移出待看
func (s *ListService) WatchlistRemove(ctx context.Context, userID, movieID uint) error {
	return s.withWatchlist(ctx, userID, movieID, func(tx *repository.Store, listID uint) error {
		_, err := tx.Lists.RemoveMovie(ctx, listID, movieID)
		return err
	})
}

// WatchlistToggle 切换待看状态，返回切换后的状态
func (s *ListService) WatchlistToggle(ctx context.Context, userID, movieID uint) (bool, error) {
	var inList bool
	err := s.withWatchlist(ctx, userID, movieID, func(tx *repository.Store, listID uint) error {
		var err error
		inList, err = toggleMembership(ctx, tx, listID, movieID)
		return err
	})
	return inList, err
}

func (s *ListService) withWatchlist(ctx context.Context, userID, movieID uint, fn func(tx *repository.Store, listID uint) error) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Movies.Exists(ctx, movieID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		watchlist, err := tx.Lists.GetOrCreateWatchlist(ctx, userID)
		if err != nil {
			return err
		}
		return fn(tx, watchlist.ID)
	})
}

// toggleMembership 先删除，没有删除到再插入；并发插入由主键冲突忽略
func toggleMembership(ctx context.Context, tx *repository.Store, listID, movieID uint) (bool, error) {
	removed, err := tx.Lists.RemoveMovie(ctx, listID, movieID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	if _, err := tx.Lists.AddMovie(ctx, listID, movieID); err != nil {
		return false, err
	}
	return true, nil
}

func ownedListWithMovie(ctx context.Context, tx *repository.Store, userID, listID, movieID uint) error {
	if _, err := tx.Lists.GetOwned(ctx, listID, userID); err != nil {
		return notFoundOr(err)
	}
	exists, err := tx.Movies.Exists(ctx, movieID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func validateListInput(in ListInput) (string, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", "", invalid("list name is required")
	}
	if utf8.RuneCountInString(name) > MaxListNameLength {
		return "", "", invalid("list name is too long")
	}
	if utf8.RuneCountInString(in.Description) > MaxListDescriptionLength {
		return "", "", invalid("list description is too long")
	}
	return name, model.NormalizeListName(name), nil
}

func ensureNameFree(ctx context.Context, tx *repository.Store, userID uint, name, key string, excludeID uint) error {
	taken, err := tx.Lists.NameTaken(ctx, userID, key, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return duplicateName(name)
	}
	return nil
}

// watchlistKey 待看片单懒创建时使用的归一化名称，自建片单不可占用
var watchlistKey = model.NormalizeListName(model.WatchlistName)

func reservedName(name string) error {
	return invalid(fmt.Sprintf("the name %q is reserved for your watchlist", name))
}

func duplicateName(name string) error {
	return invalid(fmt.Sprintf("you already have a list named %q", name))
}

// checkMovies 去重并确认电影都存在
func checkMovies(ctx context.Context, tx *repository.Store, ids []uint) ([]uint, error) {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return unique, nil
	}

	movies, err := tx.Movies.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(movies) != len(unique) {
		return nil, invalid("some selected movies do not exist")
	}
	return unique, nil
}
