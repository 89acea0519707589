package repository

import (
	"context"
	"errors"

	"filmmate/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListRepository struct {
	orm *gorm.DB
}

func (r *ListRepository) Create(ctx context.Context, list *model.List) error {
	return r.orm.WithContext(ctx).Omit("Movies").Create(list).Error
}

// GetOwned 按所有者限定查询，他人的片单视为不存在
func (r *ListRepository) GetOwned(ctx context.Context, id, userID uint) (*model.List, error) {
	var l model.List
	err := r.orm.WithContext(ctx).
		Preload("Movies", func(db *gorm.DB) *gorm.DB { return db.Order("movie.title") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListByUser 用户的全部片单，待看片单排在最前
func (r *ListRepository) ListByUser(ctx context.Context, userID uint) ([]model.List, error) {
	var lists []model.List
	err := r.orm.WithContext(ctx).
		Preload("Movies", func(db *gorm.DB) *gorm.DB { return db.Order("movie.title") }).
		Where("user_id = ?", userID).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN kind = ? THEN 0 ELSE 1 END, name",
			Vars: []interface{}{model.ListKindWatchlist},
		}}).
		Find(&lists).Error
	return lists, err
}

// FindWatchlist 按类型查找待看片单
func (r *ListRepository) FindWatchlist(ctx context.Context, userID uint) (*model.List, error) {
	var l model.List
	err := r.orm.WithContext(ctx).
		Preload("Movies", func(db *gorm.DB) *gorm.DB { return db.Order("movie.title") }).
		Where("user_id = ? AND kind = ?", userID, model.ListKindWatchlist).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetOrCreateWatchlist 懒创建待看片单；并发创建由唯一索引兜底
func (r *ListRepository) GetOrCreateWatchlist(ctx context.Context, userID uint) (*model.List, error) {
	l, err := r.FindWatchlist(ctx, userID)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &model.List{
		UserID:  userID,
		Kind:    model.ListKindWatchlist,
		Name:    model.WatchlistName,
		NameKey: model.NormalizeListName(model.WatchlistName),
	}
	if err := r.orm.WithContext(ctx).Omit("Movies").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(created).Error; err != nil {
		return nil, err
	}
	return r.FindWatchlist(ctx, userID)
}

// NameTaken 同一用户下是否已有同名片单（名称已归一化），excludeID 为编辑中的片单
func (r *ListRepository) NameTaken(ctx context.Context, userID uint, nameKey string, excludeID uint) (bool, error) {
	var count int64
	tx := r.orm.WithContext(ctx).Model(&model.List{}).
		Where("user_id = ? AND name_key = ?", userID, nameKey)
	if excludeID > 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	err := tx.Count(&count).Error
	return count > 0, err
}

// UpdateInfo 更新名称与描述
func (r *ListRepository) UpdateInfo(ctx context.Context, list *model.List) error {
	return r.orm.WithContext(ctx).Model(&model.List{}).Where("id = ?", list.ID).
		Updates(map[string]interface{}{
			"name":        list.Name,
			"name_key":    list.NameKey,
			"description": list.Description,
		}).Error
}

// ReplaceMovies 用给定电影集合替换片单内容
func (r *ListRepository) ReplaceMovies(ctx context.Context, list *model.List, movieIDs []uint) error {
	remove := r.orm.WithContext(ctx).Where("list_id = ?", list.ID)
	if len(movieIDs) > 0 {
		remove = remove.Where("movie_id NOT IN ?", movieIDs)
	}
	if err := remove.Delete(&model.ListMovie{}).Error; err != nil {
		return err
	}

	for _, id := range movieIDs {
		if _, err := r.AddMovie(ctx, list.ID, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete 删除片单及其关联行，电影本身不受影响
func (r *ListRepository) Delete(ctx context.Context, listID uint) error {
	if err := r.orm.WithContext(ctx).Where("list_id = ?", listID).Delete(&model.ListMovie{}).Error; err != nil {
		return err
	}
	return r.orm.WithContext(ctx).Delete(&model.List{}, listID).Error
}

// AddMovie 加入电影，已存在时不做任何修改；返回是否新插入
func (r *ListRepository) AddMovie(ctx context.Context, listID, movieID uint) (bool, error) {
	res := r.orm.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ListMovie{ListID: listID, MovieID: movieID})
	return res.RowsAffected > 0, res.Error
}

// RemoveMovie 移除电影，不存在时不做任何修改；返回是否删除
func (r *ListRepository) RemoveMovie(ctx context.Context, listID, movieID uint) (bool, error) {
	res := r.orm.WithContext(ctx).
		Where("list_id = ? AND movie_id = ?", listID, movieID).
		Delete(&model.ListMovie{})
	return res.RowsAffected > 0, res.Error
}

// HasMovie 电影是否在片单中
func (r *ListRepository) HasMovie(ctx context.Context, listID, movieID uint) (bool, error) {
	var count int64
	err := r.orm.WithContext(ctx).Model(&model.ListMovie{}).
		Where("list_id = ? AND movie_id = ?", listID, movieID).
		Count(&count).Error
	return count > 0, err
}

// ListIDsContaining 用户自建片单中包含该电影的ID
func (r *ListRepository) ListIDsContaining(ctx context.Context, userID, movieID uint) ([]uint, error) {
	var ids []uint
	err := r.orm.WithContext(ctx).Model(&model.ListMovie{}).
		Joins("JOIN list ON list.id = list_movie.list_id").
		Where("list.user_id = ? AND list.kind = ? AND list_movie.movie_id = ?", userID, model.ListKindCustom, movieID).
		Order("list_movie.list_id").
		Pluck("list_movie.list_id", &ids).Error
	return ids, err
}
