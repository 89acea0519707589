package service

import (
	"context"
	"fmt"
	"strings"

	"filmmate/internal/chat"
	"filmmate/internal/model"
	"filmmate/internal/repository"
	"filmmate/pkg/logger"
	"filmmate/pkg/metrics"

	"go.uber.org/zap"
)

// 聊天相关默认值
const (
	DefaultChatResults = 5
	ChatGreeting       = "Hi! I'm FilmMate. Tell me what kind of movie you're in the mood for, like \"a funny comedy\" or \"something with dinosaurs\"."
	chatFailureReply   = "Sorry, I couldn't search the catalog right now. Please try again in a moment."
)

// ChatReply 聊天接口的响应
type ChatReply struct {
	Reply  string       `json:"reply"`
	Movies []chat.Movie `json:"movies"`
}

type ChatService struct {
	store      *repository.Store
	extractor  chat.Extractor
	summarizer chat.Summarizer
	fallback   chat.Summarizer
	maxResults int
}

// NewChatService 创建聊天服务；summarizer 失败时使用固定模板
func NewChatService(store *repository.Store, extractor chat.Extractor, summarizer chat.Summarizer, maxResults int) *ChatService {
	if maxResults <= 0 {
		maxResults = DefaultChatResults
	}
	if summarizer == nil {
		summarizer = chat.TemplateSummarizer{}
	}
	return &ChatService{
		store:      store,
		extractor:  extractor,
		summarizer: summarizer,
		fallback:   chat.TemplateSummarizer{},
		maxResults: maxResults,
	}
}

// Reply 处理一条聊天消息，任何内部错误都降级为兜底回复，不返回错误
func (s *ChatService) Reply(ctx context.Context, message string) *ChatReply {
	message = strings.TrimSpace(message)
	if message == "" {
		return &ChatReply{Reply: ChatGreeting, Movies: []chat.Movie{}}
	}
	log := logger.WithField("component", "chat")

	movies, err := s.search(ctx, message)
	if err != nil {
		log.Error("聊天检索失败", zap.Error(err))
		return &ChatReply{Reply: chatFailureReply, Movies: []chat.Movie{}}
	}

	reply, err := s.summarizer.Summarize(ctx, message, movies)
	if err != nil || strings.TrimSpace(reply) == "" {
		metrics.RecordChatFallback("summarize")
		log.Warn("回复生成失败，使用模板回复", zap.Error(err))
		reply, _ = s.fallback.Summarize(ctx, message, movies)
	}
	return &ChatReply{Reply: strings.TrimSpace(reply), Movies: movies}
}

// search 解析意图并检索；解析失败时把整句当作片名关键词
// 解析成功时只应用类型过滤，没有类型时返回评分最高的电影
func (s *ChatService) search(ctx context.Context, message string) ([]chat.Movie, error) {
	var (
		found []model.Movie
		err   error
	)

	filters, extractErr := s.extractor.ExtractFilters(ctx, message)
	if extractErr != nil {
		metrics.RecordChatFallback("extract")
		logger.Warn("意图解析失败，按关键词检索", zap.Error(extractErr))
		found, err = s.store.Movies.SearchTitle(ctx, message, s.maxResults)
	} else {
		logger.Debug("意图解析结果", zap.Any("filters", filters))
		found, err = s.store.Movies.TopRated(ctx, filters.Genre, s.maxResults)
	}
	if err != nil {
		return nil, err
	}

	movies := make([]chat.Movie, 0, len(found))
	for _, m := range found {
		movies = append(movies, chat.Movie{
			ID:        m.ID,
			Title:     m.Title,
			Year:      m.Year,
			Director:  m.Director,
			Rating:    m.Rating,
			DetailURL: MovieDetailURL(m.ID),
			PosterURL: m.PosterURL,
		})
	}
	return movies, nil
}

// MovieDetailURL 电影详情接口地址
func MovieDetailURL(id uint) string {
	return fmt.Sprintf("/api/v1/movies/%d", id)
}
