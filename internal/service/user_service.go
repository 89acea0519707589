package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"filmmate/internal/model"
	"filmmate/internal/repository"
	"filmmate/pkg/jwt"
	"filmmate/pkg/logger"
	"filmmate/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 用户字段长度限制
const (
	MaxUsernameLength = 64
	MaxBioLength      = 500
	searchLimit       = 20
)

type UserService struct {
	store      *repository.Store
	jwtService *jwt.JWTService
}

func NewUserService(store *repository.Store, jwtService *jwt.JWTService) *UserService {
	return &UserService{store: store, jwtService: jwtService}
}

// Profile 用户公开资料
type Profile struct {
	User         *model.User
	FriendCount  int64
	Relationship Relationship
}

// UserMatch 搜索结果
type UserMatch struct {
	User         model.User
	Relationship Relationship
}

// Register 注册
func (s *UserService) Register(ctx context.Context, username, email, plainPassword string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, "", invalid("username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return nil, "", invalid("username is too long")
	}
	if err := password.Validate(plainPassword); err != nil {
		return nil, "", invalid(err.Error())
	}

	// 密码哈希
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", conflict("username is already taken")
		}
		return nil, "", err
	}

	// 默认签发 token
	token, err := s.jwtService.IssueToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	logger.Info("用户注册成功", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

// Login 登录
func (s *UserService) Login(ctx context.Context, username, plainPassword string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || plainPassword == "" {
		return nil, "", invalid("username and password are required")
	}
	u, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.jwtService.IssueToken(u.ID, u.Username)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Get 按ID获取用户
func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	u, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return u, nil
}

// UpdateBio 更新个人简介
func (s *UserService) UpdateBio(ctx context.Context, id uint, bio string) (*model.User, error) {
	bio = strings.TrimSpace(bio)
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return nil, invalid("bio is too long")
	}
	if err := s.store.Users.UpdateBio(ctx, id, bio); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Profile 公开资料；viewerID 为 0 表示匿名访问
func (s *UserService) Profile(ctx context.Context, viewerID, id uint) (*Profile, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Friends.CountFriends(ctx, id)
	if err != nil {
		return nil, err
	}

	rel := RelationshipNone
	if viewerID == id {
		rel = RelationshipSelf
	} else if viewerID > 0 {
		rels, err := relationships(ctx, s.store, viewerID, []uint{id})
		if err != nil {
			return nil, err
		}
		rel = rels[id]
	}
	return &Profile{User: u, FriendCount: count, Relationship: rel}, nil
}

// IsStaff 是否管理员
func (s *UserService) IsStaff(ctx context.Context, id uint) (bool, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsStaff, nil
}

// Search 按用户名搜索其他用户并标注关系
func (s *UserService) Search(ctx context.Context, viewerID uint, q string) ([]UserMatch, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []UserMatch{}, nil
	}
	users, err := s.store.Users.Search(ctx, q, viewerID, searchLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	rels, err := relationships(ctx, s.store, viewerID, ids)
	if err != nil {
		return nil, err
	}

	matches := make([]UserMatch, 0, len(users))
	for _, u := range users {
		matches = append(matches, UserMatch{User: u, Relationship: rels[u.ID]})
	}
	return matches, nil
}
