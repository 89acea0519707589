package response

import (
	"time"

	"filmmate/internal/model"
)

// UserInfo 对外暴露的用户信息（不含密码哈希）
type UserInfo struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicUser 他人可见的用户信息
type PublicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio,omitempty"`
}

// AuthResponse 注册、登录响应
type AuthResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
}

// FilterUserInfo 过滤敏感字段，仅本人可见邮箱
func FilterUserInfo(u *model.User) *UserInfo {
	if u == nil {
		return nil
	}
	return &UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

func FilterPublicUser(u *model.User) *PublicUser {
	return &PublicUser{ID: u.ID, Username: u.Username, Bio: u.Bio}
}

// GenreItem 类型
type GenreItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// MovieItem 电影摘要
type MovieItem struct {
	ID        uint        `json:"id"`
	Title     string      `json:"title"`
	Year      int         `json:"year"`
	Director  string      `json:"director"`
	PosterURL string      `json:"poster_url"`
	Rating    float64     `json:"rating"`
	Genres    []GenreItem `json:"genres,omitempty"`
}

// MovieDetail 电影详情
type MovieDetail struct {
	MovieItem
	Description       string     `json:"description"`
	RatingLastUpdated *time.Time `json:"rating_last_updated"`
}

func FilterGenres(genres []model.Genre) []GenreItem {
	items := make([]GenreItem, 0, len(genres))
	for _, g := range genres {
		items = append(items, GenreItem{ID: g.ID, Name: g.Name})
	}
	return items
}

func FilterMovie(m *model.Movie) MovieItem {
	item := MovieItem{
		ID:        m.ID,
		Title:     m.Title,
		Year:      m.Year,
		Director:  m.Director,
		PosterURL: m.PosterURL,
		Rating:    m.Rating,
	}
	if len(m.Genres) > 0 {
		item.Genres = FilterGenres(m.Genres)
	}
	return item
}

func FilterMovies(movies []model.Movie) []MovieItem {
	items := make([]MovieItem, 0, len(movies))
	for i := range movies {
		items = append(items, FilterMovie(&movies[i]))
	}
	return items
}

func FilterMovieDetail(m *model.Movie) *MovieDetail {
	return &MovieDetail{
		MovieItem:         FilterMovie(m),
		Description:       m.Description,
		RatingLastUpdated: m.RatingLastUpdated,
	}
}

// ReviewItem 影评
type ReviewItem struct {
	ID        uint      `json:"id"`
	MovieID   uint      `json:"movie_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func FilterReview(r *model.Review) ReviewItem {
	return ReviewItem{
		ID:        r.ID,
		MovieID:   r.MovieID,
		UserID:    r.UserID,
		Username:  r.User.Username,
		Rating:    r.Rating,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}

func FilterReviews(reviews []model.Review) []ReviewItem {
	items := make([]ReviewItem, 0, len(reviews))
	for i := range reviews {
		items = append(items, FilterReview(&reviews[i]))
	}
	return items
}

// ListItem 片单
type ListItem struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	IsWatchlist bool        `json:"is_watchlist"`
	MovieCount  int         `json:"movie_count"`
	Movies      []MovieItem `json:"movies"`
	CreatedAt   time.Time   `json:"created_at"`
}

func FilterList(l *model.List) *ListItem {
	return &ListItem{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		IsWatchlist: l.IsWatchlist(),
		MovieCount:  len(l.Movies),
		Movies:      FilterMovies(l.Movies),
		CreatedAt:   l.CreatedAt,
	}
}

func FilterLists(lists []model.List) []*ListItem {
	items := make([]*ListItem, 0, len(lists))
	for i := range lists {
		items = append(items, FilterList(&lists[i]))
	}
	return items
}

// FriendRequestItem 好友请求
type FriendRequestItem struct {
	ID        uint        `json:"id"`
	From      *PublicUser `json:"from,omitempty"`
	To        *PublicUser `json:"to,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func FilterFriendRequest(r *model.FriendRequest) FriendRequestItem {
	item := FriendRequestItem{ID: r.ID, CreatedAt: r.CreatedAt}
	if r.FromUser.ID != 0 {
		item.From = FilterPublicUser(&r.FromUser)
	}
	if r.ToUser.ID != 0 {
		item.To = FilterPublicUser(&r.ToUser)
	}
	return item
}

func FilterFriendRequests(reqs []model.FriendRequest) []FriendRequestItem {
	items := make([]FriendRequestItem, 0, len(reqs))
	for i := range reqs {
		items = append(items, FilterFriendRequest(&reqs[i]))
	}
	return items
}
