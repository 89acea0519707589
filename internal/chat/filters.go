package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ErrNoJSON 模型输出中找不到JSON对象
var ErrNoJSON = errors.New("no json object in model output")

// Filters 从自然语言中解析出的结构化检索条件，所有字段可选
// 目前检索只使用 Genre，其余字段解析后保留用于日志
type Filters struct {
	Genre     string  `json:"genre,omitempty"`
	Director  string  `json:"director,omitempty"`
	Year      int     `json:"year,omitempty"`
	RatingGTE float64 `json:"rating_gte,omitempty"`
	Keywords  string  `json:"keywords,omitempty"`
}

// Empty 是否没有任何条件
func (f Filters) Empty() bool {
	return f == Filters{}
}

// ParseFilters 解析模型输出；兼容代码块包裹和前后多余文字，字段类型宽松处理
func ParseFilters(text string) (Filters, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Filters{}, ErrNoJSON
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return Filters{}, fmt.Errorf("decode filters: %w", err)
	}

	var f Filters
	f.Genre = firstString(raw["genre"])
	f.Director = firstString(raw["director"])
	f.Keywords = asString(raw["keywords"])
	if year, ok := asNumber(raw["year"]); ok {
		f.Year = int(year)
	}
	if rating, ok := asNumber(raw["rating_gte"]); ok {
		f.RatingGTE = rating
	}
	return f, nil
}

// asString 字符串或字符串数组，其他类型视为空
func asString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// firstString 数组只取第一个非空元素，类型名与导演需要精确匹配
func firstString(v interface{}) string {
	if items, ok := v.([]interface{}); ok {
		for _, item := range items {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}
	return asString(v)
}

func asNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
