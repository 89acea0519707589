package model

import (
	"time"

	"gorm.io/gorm"
)

// Friendship 好友关系
// 一行代表一对互为好友的用户（无序对），写入前保证 UserID < FriendID，
// 因此 A-B 与 B-A 落在同一唯一索引上，不存在单向好友的中间状态。

type Friendship struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_friendship_pair;comment:较小的用户ID"`
	FriendID  uint      `gorm:"not null;uniqueIndex:idx_friendship_pair;index;comment:较大的用户ID"`
	CreatedAt time.Time `gorm:"comment:成为好友时间"`
}

func (Friendship) TableName() string { return "friendship" }

// NewFriendship 按无序对构造好友关系
func NewFriendship(a, b uint) *Friendship {
	low, high := OrderedPair(a, b)
	return &Friendship{UserID: low, FriendID: high}
}

// BeforeCreate 保证 UserID < FriendID
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	f.UserID, f.FriendID = OrderedPair(f.UserID, f.FriendID)
	return nil
}

// OrderedPair 返回 (较小ID, 较大ID)
func OrderedPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// FriendRequest 好友请求
// 请求被接受、拒绝或撤回后直接删除，不保留历史

type FriendRequest struct {
	ID         uint      `gorm:"primaryKey"`
	FromUserID uint      `gorm:"not null;uniqueIndex:idx_friend_request_pair;comment:发起人"`
	ToUserID   uint      `gorm:"not null;uniqueIndex:idx_friend_request_pair;index;comment:接收人"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`

	FromUser User `gorm:"foreignKey:FromUserID"`
	ToUser   User `gorm:"foreignKey:ToUserID"`
}

func (FriendRequest) TableName() string { return "friend_request" }
