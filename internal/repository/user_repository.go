package repository

import (
	"context"

	"filmmate/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.orm.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs 批量查询，结果顺序不保证
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.orm.WithContext(ctx).Where("id IN ?", ids).Order("username").Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateBio(ctx context.Context, id uint, bio string) error {
	return r.orm.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("bio", bio).Error
}

// Search 按用户名子串搜索（不区分大小写），排除自己
func (r *UserRepository) Search(ctx context.Context, q string, excludeID uint, limit int) ([]model.User, error) {
	var users []model.User
	err := r.orm.WithContext(ctx).
		Where("LOWER(username) LIKE ?"+likeEscape, containsPattern(q)).
		Where("id <> ?", excludeID).
		Order("username").
		Limit(limit).
		Find(&users).Error
	return users, err
}
