package model

import "time"

// WatchedMovie 已看记录，(user_id, movie_id) 唯一，并发重复插入由存储层拒绝
type WatchedMovie struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_watched_user_movie;comment:用户"`
	MovieID   uint      `gorm:"not null;uniqueIndex:idx_watched_user_movie;index;comment:电影"`
	WatchedAt time.Time `gorm:"not null;comment:标记时间"`

	Movie Movie `gorm:"foreignKey:MovieID"`
}

func (WatchedMovie) TableName() string { return "watched_movie" }
