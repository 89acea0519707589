package repository

import (
	"context"

	"filmmate/internal/model"

	"gorm.io/gorm"
)

type FriendRepository struct {
	orm *gorm.DB
}

// AreFriends 两人是否互为好友
func (r *FriendRepository) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	low, high := model.OrderedPair(a, b)
	var count int64
	err := r.orm.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", low, high).
		Count(&count).Error
	return count > 0, err
}

// CreateFriendship 建立好友关系（一行即双向）
func (r *FriendRepository) CreateFriendship(ctx context.Context, a, b uint) error {
	return r.orm.WithContext(ctx).Create(model.NewFriendship(a, b)).Error
}

// DeleteFriendship 解除好友关系，返回是否存在
func (r *FriendRepository) DeleteFriendship(ctx context.Context, a, b uint) (bool, error) {
	low, high := model.OrderedPair(a, b)
	res := r.orm.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", low, high).
		Delete(&model.Friendship{})
	return res.RowsAffected > 0, res.Error
}

// FriendIDs 用户全部好友ID
func (r *FriendRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var rows []model.Friendship
	err := r.orm.WithContext(ctx).
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	for _, f := range rows {
		if f.UserID == userID {
			ids = append(ids, f.FriendID)
		} else {
			ids = append(ids, f.UserID)
		}
	}
	return ids, nil
}

// CountFriends 好友数量
func (r *FriendRepository) CountFriends(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.orm.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}

func (r *FriendRepository) CreateRequest(ctx context.Context, req *model.FriendRequest) error {
	return r.orm.WithContext(ctx).Omit("FromUser", "ToUser").Create(req).Error
}

// FindRequestBetween 任意方向的待处理请求
func (r *FriendRepository) FindRequestBetween(ctx context.Context, a, b uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.orm.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		Order("id").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetRequestTo 按接收人限定查询请求
func (r *FriendRepository) GetRequestTo(ctx context.Context, id, toUserID uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.orm.WithContext(ctx).
		Preload("FromUser").
		Where("id = ? AND to_user_id = ?", id, toUserID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetRequestFrom 按发起人限定查询请求
func (r *FriendRepository) GetRequestFrom(ctx context.Context, id, fromUserID uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.orm.WithContext(ctx).
		Where("id = ? AND from_user_id = ?", id, fromUserID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// DeleteRequest 删除单个请求，返回是否存在
func (r *FriendRepository) DeleteRequest(ctx context.Context, id uint) (bool, error) {
	res := r.orm.WithContext(ctx).Delete(&model.FriendRequest{}, id)
	return res.RowsAffected > 0, res.Error
}

// DeleteRequestsBetween 删除两人之间任意方向的请求
func (r *FriendRepository) DeleteRequestsBetween(ctx context.Context, a, b uint) error {
	return r.orm.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		Delete(&model.FriendRequest{}).Error
}

// Incoming 发给用户的请求，新的在前
func (r *FriendRepository) Incoming(ctx context.Context, userID uint) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := r.orm.WithContext(ctx).
		Preload("FromUser").
		Where("to_user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reqs).Error
	return reqs, err
}

// Outgoing 用户发出的请求，新的在前
func (r *FriendRepository) Outgoing(ctx context.Context, userID uint) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := r.orm.WithContext(ctx).
		Preload("ToUser").
		Where("from_user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reqs).Error
	return reqs, err
}

// PendingWith 用户与一组用户之间的请求（用于搜索结果标注关系）
func (r *FriendRepository) PendingWith(ctx context.Context, userID uint, others []uint) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	if len(others) == 0 {
		return reqs, nil
	}
	err := r.orm.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id IN ?) OR (to_user_id = ? AND from_user_id IN ?)", userID, others, userID, others).
		Find(&reqs).Error
	return reqs, err
}
