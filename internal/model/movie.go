package model

import "time"

// Movie 电影
// Rating 为全部评论评分的算术平均（保留一位小数），无评论时为 0

type Movie struct {
	ID                uint       `gorm:"primaryKey"`
	Title             string     `gorm:"type:varchar(200);not null;index;comment:片名"`
	Year              int        `gorm:"not null;index;comment:上映年份"`
	Director          string     `gorm:"type:varchar(100);comment:导演"`
	Description       string     `gorm:"type:text;comment:简介"`
	PosterURL         string     `gorm:"type:varchar(500);comment:海报URL"`
	Rating            float64    `gorm:"not null;default:0;comment:平均评分"`
	RatingLastUpdated *time.Time `gorm:"comment:评分最近重算时间"`
	Genres            []Genre    `gorm:"many2many:movie_genre;"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Movie) TableName() string { return "movie" }

// Genre 类型（名称唯一性不由表结构保证）
type Genre struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(100);not null;index;comment:名称"`
	Description string `gorm:"type:text;comment:描述"`
}

func (Genre) TableName() string { return "genre" }
