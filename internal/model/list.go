package model

import (
	"strings"
	"time"
)

// 片单类型
const (
	ListKindCustom    = "custom"
	ListKindWatchlist = "watchlist"
)

// WatchlistName 待看片单的默认名称
const WatchlistName = "Watchlist"

// List 用户片单
// NameKey 为去空白、小写后的名称，(user_id, kind, name_key) 唯一；
// 每个用户最多一个 kind=watchlist 的片单，按类型识别而不是按名称。

type List struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_list_owner_name;comment:所属用户"`
	Kind        string    `gorm:"type:varchar(16);not null;default:'custom';uniqueIndex:idx_list_owner_name;comment:片单类型"`
	Name        string    `gorm:"type:varchar(100);not null;comment:名称"`
	NameKey     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_list_owner_name;comment:归一化名称"`
	Description string    `gorm:"type:text;comment:描述"`
	Movies      []Movie   `gorm:"many2many:list_movie;"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

func (List) TableName() string { return "list" }

// IsWatchlist 是否为待看片单
func (l *List) IsWatchlist() bool { return l.Kind == ListKindWatchlist }

// NormalizeListName 生成 NameKey
func NormalizeListName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ListMovie 片单与电影的关联表，(list_id, movie_id) 为联合主键
type ListMovie struct {
	ListID  uint      `gorm:"primaryKey;autoIncrement:false"`
	MovieID uint      `gorm:"primaryKey;autoIncrement:false;index"`
	AddedAt time.Time `gorm:"autoCreateTime;comment:加入时间"`
}

func (ListMovie) TableName() string { return "list_movie" }
