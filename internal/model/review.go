package model

import "time"

// 评分范围
const (
	MinRating = 1
	MaxRating = 10
)

// Review 影评
// 同一用户可以对同一部电影提交多条影评，(user_id, movie_id) 不做唯一约束

type Review struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index;comment:作者"`
	MovieID   uint      `gorm:"not null;index;comment:电影"`
	Text      string    `gorm:"type:text;not null;comment:内容"`
	Rating    int       `gorm:"not null;comment:评分(1-10)"`
	CreatedAt time.Time `gorm:"index;comment:发布时间"`

	User User `gorm:"foreignKey:UserID"`
}

func (Review) TableName() string { return "review" }
