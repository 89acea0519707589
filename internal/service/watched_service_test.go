package service

import (
	"context"
	"testing"

	"filmmate/internal/model"
	"filmmate/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchedToggleTwiceRestoresState(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	svc := NewWatchedService(store)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "alice")
	m := testutil.CreateMovie(t, gdb, model.Movie{Title: "Alien", Year: 1979})

	watched, err := svc.Toggle(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, watched)

	ok, err := svc.IsWatched(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	watched, err = svc.Toggle(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, watched)

	ok, err = svc.IsWatched(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Toggle(ctx, u.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWatchedInsertIsIdempotent(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "alice")
	m := testutil.CreateMovie(t, gdb, model.Movie{Title: "Alien", Year: 1979})

	inserted, err := store.Watched.Insert(ctx, u.ID, m.ID, m.CreatedAt)
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = store.Watched.Insert(ctx, u.ID, m.ID, m.CreatedAt)
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := store.Watched.CountByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkFromDetailEvictsWatchlist(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	svc := NewWatchedService(store)
	lists := NewListService(store)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "alice")
	m := testutil.CreateMovie(t, gdb, model.Movie{Title: "Alien", Year: 1979})
	require.NoError(t, lists.WatchlistAdd(ctx, u.ID, m.ID))

	watched, evicted, err := svc.MarkFromDetail(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, watched)
	assert.True(t, evicted)

	watchlist, err := lists.Watchlist(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, watchlist.Movies)

	// 取消已看不会把电影放回待看
	watched, evicted, err = svc.MarkFromDetail(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, watched)
	assert.False(t, evicted)

	// 没有待看片单时也能标记
	other := testutil.CreateUser(t, gdb, "bob")
	watched, evicted, err = svc.MarkFromDetail(ctx, other.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, watched)
	assert.False(t, evicted)
}

func TestWatchedListPagination(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	svc := NewWatchedService(store)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "alice")
	for i := 0; i < WatchedPageSize+3; i++ {
		m := testutil.CreateMovie(t, gdb, model.Movie{Title: "Movie", Year: 2000 + i})
		_, err := svc.Toggle(ctx, u.ID, m.ID)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, u.ID, "9")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 3)
	assert.NotZero(t, page.Items[0].Movie.ID)

	page, err = svc.List(ctx, u.ID, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, WatchedPageSize)
}
