package chat

import (
	"context"
	"errors"
	"testing"

	"filmmate/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	out  string
	err  error
	last llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.last = req
	return f.out, f.err
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Filters
	}{
		{"plain", `{"genre":"Horror"}`, Filters{Genre: "Horror"}},
		{"fenced", "```json\n{\"genre\": \"Sci-Fi\", \"year\": 1999}\n```", Filters{Genre: "Sci-Fi", Year: 1999}},
		{"surrounding prose", `Sure! {"director":"Nolan","rating_gte":"8.5"} hope this helps`, Filters{Director: "Nolan", RatingGTE: 8.5}},
		{"keyword list", `{"keywords":["space"," heist "]}`, Filters{Keywords: "space heist"}},
		{"genre list takes first", `{"genre":["", " Comedy ","Drama"],"director":["Nolan","Villeneuve"]}`, Filters{Genre: "Comedy", Director: "Nolan"}},
		{"wrong types ignored", `{"genre":7,"year":"soon"}`, Filters{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilters(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFilters("I cannot help with that")
	assert.ErrorIs(t, err, ErrNoJSON)
	_, err = ParseFilters(`{"genre": }`)
	assert.Error(t, err)
	assert.True(t, Filters{}.Empty())
}

func TestLLMExtractor(t *testing.T) {
	fc := &fakeCompleter{out: `{"genre":"Comedy"}`}
	f, err := NewLLMExtractor(fc, 0.1).ExtractFilters(context.Background(), "something funny")
	require.NoError(t, err)
	assert.Equal(t, "Comedy", f.Genre)
	assert.Equal(t, "intent", fc.last.Purpose)
	assert.Equal(t, "something funny", fc.last.User)

	fc.err = errors.New("down")
	_, err = NewLLMExtractor(fc, 0.1).ExtractFilters(context.Background(), "x")
	assert.Error(t, err)
}

type staticGenres []string

func (g staticGenres) GenreNames(context.Context) ([]string, error) { return g, nil }

func TestGenreExtractor(t *testing.T) {
	e := NewGenreExtractor(staticGenres{"Drama", "Science Fiction", "Fiction"})

	f, err := e.ExtractFilters(context.Background(), "any good science fiction?")
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", f.Genre)

	_, err = e.ExtractFilters(context.Background(), " the matrix ")
	assert.ErrorIs(t, err, ErrNoGenre)
}

func TestSummarizers(t *testing.T) {
	movies := []Movie{{Title: "Alien", Year: 1979}, {Title: "Aliens", Year: 1986}}

	reply, err := TemplateSummarizer{}.Summarize(context.Background(), "aliens", movies)
	require.NoError(t, err)
	assert.Equal(t, "Here are 2 movies you might like: Alien (1979), Aliens (1986).", reply)

	reply, err = TemplateSummarizer{}.Summarize(context.Background(), "aliens", movies[:1])
	require.NoError(t, err)
	assert.Equal(t, "Here is a movie you might like: Alien (1979).", reply)

	reply, err = TemplateSummarizer{}.Summarize(context.Background(), "zzz", nil)
	require.NoError(t, err)
	assert.Contains(t, reply, `"zzz"`)

	fc := &fakeCompleter{out: "Try Alien!"}
	reply, err = NewLLMSummarizer(fc, 0.7).Summarize(context.Background(), "aliens", movies)
	require.NoError(t, err)
	assert.Equal(t, "Try Alien!", reply)
	assert.Contains(t, fc.last.User, "Aliens (1986)")
	assert.Equal(t, "reply", fc.last.Purpose)
}
