package service

import (
	"context"
	"testing"

	"filmmate/internal/model"
	"filmmate/internal/testutil"
	"filmmate/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCatalog(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	scifi := testutil.CreateGenre(t, gdb, "Science Fiction")
	horror := testutil.CreateGenre(t, gdb, "Horror")
	drama := testutil.CreateGenre(t, gdb, "Drama")

	testutil.CreateMovie(t, gdb, model.Movie{Title: "Alien", Year: 1979, Director: "Ridley Scott", Rating: 8.5}, scifi, horror)
	testutil.CreateMovie(t, gdb, model.Movie{Title: "Aliens", Year: 1986, Director: "James Cameron", Rating: 8.4}, scifi)
	testutil.CreateMovie(t, gdb, model.Movie{Title: "The Thing", Year: 1982, Director: "John Carpenter", Rating: 8.2}, horror, scifi)
	testutil.CreateMovie(t, gdb, model.Movie{Title: "Heat", Year: 1995, Director: "Michael Mann", Rating: 8.3}, drama)
	testutil.CreateMovie(t, gdb, model.Movie{Title: "Brazil", Year: 1985, Director: "Terry Gilliam", Rating: 7.9}, scifi, drama)
}

func titles(movies []model.Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Title)
	}
	return out
}

func TestBrowseFilters(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	seedCatalog(t, gdb)
	svc := NewCatalogService(store, DefaultPageSize, false)
	ctx := context.Background()

	page, err := svc.Browse(ctx, CatalogParams{Q: "ALIEN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien", "Aliens"}, titles(page.Movies))

	// 类型名精确匹配，不区分大小写
	page, err = svc.Browse(ctx, CatalogParams{Genre: "horror"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien", "The Thing"}, titles(page.Movies))

	page, err = svc.Browse(ctx, CatalogParams{Genre: "Horr"})
	require.NoError(t, err)
	assert.Empty(t, page.Movies)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)

	page, err = svc.Browse(ctx, CatalogParams{Q: "a", Genre: "drama", Sort: "year"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Brazil", "Heat"}, titles(page.Movies))

	// 带百分号的查询按字面匹配
	page, err = svc.Browse(ctx, CatalogParams{Q: "%"})
	require.NoError(t, err)
	assert.Empty(t, page.Movies)
}

func TestBrowseSortFallsBackToTitle(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	seedCatalog(t, gdb)
	svc := NewCatalogService(store, DefaultPageSize, false)
	ctx := context.Background()

	byTitle, err := svc.Browse(ctx, CatalogParams{Sort: "title"})
	require.NoError(t, err)
	byRating, err := svc.Browse(ctx, CatalogParams{Sort: "rating"})
	require.NoError(t, err)
	assert.Equal(t, titles(byTitle.Movies), titles(byRating.Movies))
	assert.Equal(t, "title", byRating.Sort)

	byDirector, err := svc.Browse(ctx, CatalogParams{Sort: "director"})
	require.NoError(t, err)
	assert.Equal(t, "Aliens", byDirector.Movies[0].Title)
}

func TestBrowsePageClamping(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	seedCatalog(t, gdb)
	svc := NewCatalogService(store, 2, false)
	ctx := context.Background()

	page, err := svc.Browse(ctx, CatalogParams{Page: "99"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, []string{"The Thing"}, titles(page.Movies))

	for _, raw := range []string{"", "0", "-2", "two"} {
		page, err = svc.Browse(ctx, CatalogParams{Page: raw})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page, raw)
		assert.Equal(t, []string{"Alien", "Aliens"}, titles(page.Movies))
	}
}

func TestBrowseUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = redis.Close() })

	store, gdb := testutil.NewStore(t)
	seedCatalog(t, gdb)
	svc := NewCatalogService(store, DefaultPageSize, true)
	reviews := NewReviewService(store)
	ctx := context.Background()

	first, err := svc.Browse(ctx, CatalogParams{Q: "heat"})
	require.NoError(t, err)
	require.Len(t, first.Movies, 1)

	// 直接改库不会影响缓存中的结果
	require.NoError(t, gdb.Model(&model.Movie{}).Where("title = ?", "Heat").Update("director", "Someone Else").Error)
	cached, err := svc.Browse(ctx, CatalogParams{Q: "heat"})
	require.NoError(t, err)
	assert.Equal(t, "Michael Mann", cached.Movies[0].Director)

	// 提交影评会使缓存失效
	u := testutil.CreateUser(t, gdb, "alice")
	_, _, err = reviews.Submit(ctx, u.ID, first.Movies[0].ID, 6, "fine")
	require.NoError(t, err)
	fresh, err := svc.Browse(ctx, CatalogParams{Q: "heat"})
	require.NoError(t, err)
	assert.Equal(t, "Someone Else", fresh.Movies[0].Director)
	assert.Equal(t, 6.0, fresh.Movies[0].Rating)
}

func TestDetailViewerState(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	seedCatalog(t, gdb)
	svc := NewCatalogService(store, DefaultPageSize, false)
	lists := NewListService(store)
	watched := NewWatchedService(store)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "alice")
	movie, err := store.Movies.SearchTitle(ctx, "Alien", 1)
	require.NoError(t, err)
	require.Len(t, movie, 1)
	id := movie[0].ID

	anon, err := svc.Detail(ctx, 0, id)
	require.NoError(t, err)
	assert.Nil(t, anon.Viewer)
	assert.Len(t, anon.Movie.Genres, 2)

	detail, err := svc.Detail(ctx, u.ID, id)
	require.NoError(t, err)
	require.NotNil(t, detail.Viewer)
	assert.False(t, detail.Viewer.InWatchlist)
	assert.Empty(t, detail.Viewer.ListIDs)

	require.NoError(t, lists.WatchlistAdd(ctx, u.ID, id))
	fav, err := lists.Create(ctx, u.ID, ListInput{Name: "Favorites", MovieIDs: []uint{id}})
	require.NoError(t, err)
	_, err = watched.Toggle(ctx, u.ID, id)
	require.NoError(t, err)

	detail, err = svc.Detail(ctx, u.ID, id)
	require.NoError(t, err)
	assert.True(t, detail.Viewer.InWatchlist)
	assert.True(t, detail.Viewer.Watched)
	assert.Equal(t, []uint{fav.ID}, detail.Viewer.ListIDs)

	_, err = svc.Detail(ctx, u.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewsPaging(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	svc := NewCatalogService(store, DefaultPageSize, false)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "alice")
	m := testutil.CreateMovie(t, gdb, model.Movie{Title: "Heat", Year: 1995})
	for i := 0; i < ReviewPageSize+1; i++ {
		require.NoError(t, gdb.Create(&model.Review{UserID: u.ID, MovieID: m.ID, Rating: 7, Text: "ok"}).Error)
	}

	page, err := svc.Reviews(ctx, m.ID, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Reviews, 1)
	assert.Equal(t, "alice", page.Reviews[0].User.Username)

	_, err = svc.Reviews(ctx, 999, "1")
	assert.ErrorIs(t, err, ErrNotFound)
}
