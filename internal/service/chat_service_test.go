package service

import (
	"context"
	"errors"
	"testing"

	"filmmate/internal/chat"
	"filmmate/internal/model"
	"filmmate/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	filters chat.Filters
	err     error
	calls   int
}

func (e *stubExtractor) ExtractFilters(_ context.Context, _ string) (chat.Filters, error) {
	e.calls++
	return e.filters, e.err
}

type stubSummarizer struct {
	reply string
	err   error
}

func (s stubSummarizer) Summarize(_ context.Context, _ string, _ []chat.Movie) (string, error) {
	return s.reply, s.err
}

func chatTitles(movies []chat.Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Title)
	}
	return out
}

func TestChatEmptyMessageGreets(t *testing.T) {
	store, _ := testutil.NewStore(t)
	extractor := &stubExtractor{}
	svc := NewChatService(store, extractor, stubSummarizer{reply: "unused"}, 0)

	reply := svc.Reply(context.Background(), "   ")
	assert.Equal(t, ChatGreeting, reply.Reply)
	assert.NotNil(t, reply.Movies)
	assert.Empty(t, reply.Movies)
	assert.Zero(t, extractor.calls)
}

func TestChatGenreFilterOrdersByRatingThenYear(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	horror := testutil.CreateGenre(t, gdb, "Horror")
	comedy := testutil.CreateGenre(t, gdb, "Comedy")
	for _, m := range []model.Movie{
		{Title: "Halloween", Year: 1978, Rating: 7.7},
		{Title: "The Thing", Year: 1982, Rating: 8.2},
		{Title: "Alien", Year: 1979, Rating: 8.5},
		{Title: "Hereditary", Year: 2018, Rating: 7.7},
		{Title: "Scream", Year: 1996, Rating: 7.4},
		{Title: "It Follows", Year: 2014, Rating: 6.8},
	} {
		testutil.CreateMovie(t, gdb, m, horror)
	}
	testutil.CreateMovie(t, gdb, model.Movie{Title: "Airplane!", Year: 1980, Rating: 9.0}, comedy)

	svc := NewChatService(store, &stubExtractor{filters: chat.Filters{Genre: "horror", Director: "ignored"}},
		stubSummarizer{reply: "  Spooky picks!  "}, DefaultChatResults)

	reply := svc.Reply(context.Background(), "something scary")
	assert.Equal(t, "Spooky picks!", reply.Reply)
	require.Len(t, reply.Movies, DefaultChatResults)
	assert.Equal(t, []string{"Alien", "The Thing", "Hereditary", "Halloween", "Scream"}, chatTitles(reply.Movies))
	assert.Equal(t, MovieDetailURL(reply.Movies[0].ID), reply.Movies[0].DetailURL)
}

func TestChatWithoutGenreReturnsTopRated(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	for i, title := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		testutil.CreateMovie(t, gdb, model.Movie{Title: title, Year: 2000, Rating: float64(i)})
	}
	svc := NewChatService(store, &stubExtractor{}, stubSummarizer{reply: "ok"}, 3)

	reply := svc.Reply(context.Background(), "anything good?")
	assert.Equal(t, []string{"G", "F", "E"}, chatTitles(reply.Movies))
}

func TestChatExtractorFailureFallsBackToTitleSearch(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	testutil.CreateMovie(t, gdb, model.Movie{Title: "Jurassic Park", Year: 1993, Rating: 8.2})
	testutil.CreateMovie(t, gdb, model.Movie{Title: "Heat", Year: 1995, Rating: 8.3})

	svc := NewChatService(store, &stubExtractor{err: errors.New("model offline")}, stubSummarizer{reply: "Found it."}, 0)

	reply := svc.Reply(context.Background(), "jurassic")
	assert.Equal(t, "Found it.", reply.Reply)
	assert.Equal(t, []string{"Jurassic Park"}, chatTitles(reply.Movies))

	reply = svc.Reply(context.Background(), "a movie about sharks")
	assert.Empty(t, reply.Movies)
}

func TestChatSummarizerFailureUsesTemplate(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	testutil.CreateMovie(t, gdb, model.Movie{Title: "Alien", Year: 1979, Rating: 8.5})

	for _, s := range []chat.Summarizer{
		stubSummarizer{err: errors.New("timeout")},
		stubSummarizer{reply: "   "},
	} {
		svc := NewChatService(store, &stubExtractor{}, s, 0)
		reply := svc.Reply(context.Background(), "space horror")
		assert.Equal(t, "Here is a movie you might like: Alien (1979).", reply.Reply)
		assert.Len(t, reply.Movies, 1)
	}
}
