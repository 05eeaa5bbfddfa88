package domain

import (
	"errors"
	"strings"
)

const (
	// NoTitleSentinel 是标题回退链全部为空时写入的占位值；它本身不算有效标题。
	NoTitleSentinel = "No title found"
	// NoDescriptionSentinel 是描述缺失时的显式占位值。
	NoDescriptionSentinel = "No description found"
)

// ErrNoTitle 表示提取结果没有有意义的标题（空串或占位值）。
var ErrNoTitle = errors.New("no meaningful title")

// VideoRecord 是一次提取的最终结果。
//
// 不变量：
// - Title 非空且不是 NoTitleSentinel（只能经由 NewVideoRecord 构造）
// - Description 缺失时为 NoDescriptionSentinel
type VideoRecord struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Platform    Platform `json:"platform"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Views       string   `json:"views,omitempty"`
	Author      string   `json:"author,omitempty"`
}

// PartialRecord 是提取阶段的中间结果，所有字段都允许为空。
type PartialRecord struct {
	Title       string
	Description string
	Thumbnail   string
	Duration    string
	Views       string
	Author      string
}

// NewVideoRecord 校验 partial 并构造 VideoRecord。
// 标题为空（trim 后）或等于 NoTitleSentinel 时返回 ErrNoTitle，不产生记录。
func NewVideoRecord(p PartialRecord, url string, platform Platform) (VideoRecord, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" || title == NoTitleSentinel {
		return VideoRecord{}, ErrNoTitle
	}
	desc := p.Description
	if strings.TrimSpace(desc) == "" {
		desc = NoDescriptionSentinel
	}
	return VideoRecord{
		Title:       title,
		Description: desc,
		URL:         url,
		Platform:    platform,
		Thumbnail:   p.Thumbnail,
		Duration:    p.Duration,
		Views:       p.Views,
		Author:      p.Author,
	}, nil
}
