package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"filmmate/pkg/llm"
)

// ErrNoGenre 文本中没有已知类型名
var ErrNoGenre = errors.New("no known genre in text")

// Movie 聊天结果中的电影
type Movie struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Year      int     `json:"year"`
	Director  string  `json:"director"`
	Rating    float64 `json:"rating"`
	DetailURL string  `json:"detail_url"`
	PosterURL string  `json:"poster_url"`
}

// Extractor 自然语言 -> 检索条件
type Extractor interface {
	ExtractFilters(ctx context.Context, text string) (Filters, error)
}

// Summarizer 检索结果 -> 自然语言回复
type Summarizer interface {
	Summarize(ctx context.Context, query string, movies []Movie) (string, error)
}

// Completer 推理服务
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

const intentPrompt = `You turn movie requests into search filters.
Reply with one JSON object only, no prose. Allowed keys, all optional:
"genre" (string), "director" (string), "year" (number), "rating_gte" (number 0-10), "keywords" (string).
Leave out keys the request does not mention.`

const replyPrompt = `You are FilmMate, a friendly movie assistant.
Answer the user in at most two short sentences using only the movies listed.
Never mention movies that are not in the list. If the list is empty, say nothing matched and suggest another search.`

// LLMExtractor 通过推理服务解析检索条件
type LLMExtractor struct {
	client      Completer
	temperature float64
}

// NewLLMExtractor 创建基于推理服务的解析器
func NewLLMExtractor(client Completer, temperature float64) *LLMExtractor {
	return &LLMExtractor{client: client, temperature: temperature}
}

// ExtractFilters 调用模型并解析JSON
func (e *LLMExtractor) ExtractFilters(ctx context.Context, text string) (Filters, error) {
	out, err := e.client.Complete(ctx, llm.Request{
		Purpose:     "intent",
		System:      intentPrompt,
		User:        text,
		Temperature: e.temperature,
	})
	if err != nil {
		return Filters{}, err
	}
	return ParseFilters(out)
}

// GenreSource 提供当前已知的类型名
type GenreSource interface {
	GenreNames(ctx context.Context) ([]string, error)
}

// GenreExtractor 基于规则的解析器：在文本中查找已知类型名
// 推理服务未配置时使用，也用于测试
type GenreExtractor struct {
	source GenreSource
}

// NewGenreExtractor 创建规则解析器
func NewGenreExtractor(source GenreSource) *GenreExtractor {
	return &GenreExtractor{source: source}
}

// ExtractFilters 匹配最长的类型名；没有匹配时返回 ErrNoGenre，由调用方按关键词检索
func (e *GenreExtractor) ExtractFilters(ctx context.Context, text string) (Filters, error) {
	genres, err := e.source.GenreNames(ctx)
	if err != nil {
		return Filters{}, err
	}

	lower := strings.ToLower(text)
	best := ""
	for _, g := range genres {
		if g != "" && strings.Contains(lower, strings.ToLower(g)) && len(g) > len(best) {
			best = g
		}
	}
	if best == "" {
		return Filters{}, ErrNoGenre
	}
	return Filters{Genre: best}, nil
}

// LLMSummarizer 通过推理服务生成回复
type LLMSummarizer struct {
	client      Completer
	temperature float64
}

// NewLLMSummarizer 创建基于推理服务的回复生成器
func NewLLMSummarizer(client Completer, temperature float64) *LLMSummarizer {
	return &LLMSummarizer{client: client, temperature: temperature}
}

// Summarize 把结果列表交给模型生成回复
func (s *LLMSummarizer) Summarize(ctx context.Context, query string, movies []Movie) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\nMovies:\n", query)
	if len(movies) == 0 {
		b.WriteString("(none)\n")
	}
	for _, m := range movies {
		fmt.Fprintf(&b, "- %s (%d), directed by %s, rated %.1f\n", m.Title, m.Year, m.Director, m.Rating)
	}

	return s.client.Complete(ctx, llm.Request{
		Purpose:     "reply",
		System:      replyPrompt,
		User:        b.String(),
		Temperature: s.temperature,
	})
}

// TemplateSummarizer 固定模板回复，不会失败
type TemplateSummarizer struct{}

// Summarize 生成模板回复
func (TemplateSummarizer) Summarize(_ context.Context, query string, movies []Movie) (string, error) {
	if len(movies) == 0 {
		return fmt.Sprintf("Sorry, I couldn't find any movies matching %q. Try another genre or title.", query), nil
	}

	titles := make([]string, 0, len(movies))
	for _, m := range movies {
		titles = append(titles, fmt.Sprintf("%s (%d)", m.Title, m.Year))
	}
	if len(movies) == 1 {
		return fmt.Sprintf("Here is a movie you might like: %s.", titles[0]), nil
	}
	return fmt.Sprintf("Here are %d movies you might like: %s.", len(movies), strings.Join(titles, ", ")), nil
}
