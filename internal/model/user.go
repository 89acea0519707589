package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型
// 索引与唯一约束：用户名唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// IsStaff 标记管理员，可触发评分批量重算
// 好友关系不在本表维护，见 Friendship

type User struct {
	ID           uint           `gorm:"primaryKey"`
	Username     string         `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名"`
	Email        string         `gorm:"type:varchar(128);comment:邮箱"`
	PasswordHash string         `gorm:"type:varchar(255);not null;comment:密码哈希"`
	Bio          string         `gorm:"type:text;comment:个人简介"`
	IsStaff      bool           `gorm:"not null;default:false;comment:是否管理员"`
	CreatedAt    time.Time      `gorm:"comment:创建时间"`
	UpdatedAt    time.Time      `gorm:"comment:更新时间"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名（因全局配置使用单数表名，这里与结构体名一致为 user）
func (User) TableName() string { return "user" }
