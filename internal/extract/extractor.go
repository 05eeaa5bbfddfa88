package extract

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/John-Robertt/reprompt/internal/domain"
	"github.com/John-Robertt/reprompt/internal/page"
	"github.com/John-Robertt/reprompt/internal/selector"
)

const (
	// DefaultPollInterval 是内容就绪检查的轮询间隔。
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultMaxWait 是内容就绪等待的上限。
	DefaultMaxWait = 5 * time.Second
)

// Extractor 在页面上下文中运行：检测平台、按选择器目录取字段、组装并校验记录。
//
// 约束：
// - 只读访问文档，不修改页面
// - Scan 不向调用方 panic（所有意外都转为失败 Outcome）
type Extractor struct {
	Catalog selector.Catalog

	// PollInterval 为 0 时使用 DefaultPollInterval。
	PollInterval time.Duration

	// Logger 为 nil 时使用 slog.Default()。
	Logger *slog.Logger
}

// New 用给定目录构造 Extractor。
func New(c selector.Catalog, logger *slog.Logger) *Extractor {
	return &Extractor{Catalog: c, Logger: logger}
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// FindFirstMatch 按优先级尝试 platform/field 的查询，返回第一个规范化文本非空的元素。
// 单个查询失败（例如语法非法）只记录日志并继续下一个；全部耗尽返回 nil。
func (e *Extractor) FindFirstMatch(field selector.Field, platform domain.Platform, doc page.Document) page.Element {
	return e.firstMatch(field, platform, doc, NormalizeText)
}

// findFirstMedia 与 FindFirstMatch 相同，但以媒体地址（poster/src）判断是否命中。
// video/img 元素没有文本，缩略图只能按属性取值。
func (e *Extractor) findFirstMedia(field selector.Field, platform domain.Platform, doc page.Document) page.Element {
	return e.firstMatch(field, platform, doc, mediaSource)
}

func (e *Extractor) firstMatch(field selector.Field, platform domain.Platform, doc page.Document, value func(page.Element) string) page.Element {
	if doc == nil {
		return nil
	}
	for _, q := range e.Catalog.Queries(platform, field) {
		el, err := doc.QueryFirst(q)
		if err != nil {
			e.logger().Warn("selector failed", "platform", platform, "field", field, "selector", q, "err", err)
			continue
		}
		if el != nil && value(el) != "" {
			return el
		}
	}
	return nil
}

// ExtractStructured 对平台目录中的每个字段取值，字段允许为空。
// thumbnail 取媒体地址，其余字段取 FindFirstMatch 的规范化文本。
func (e *Extractor) ExtractStructured(platform domain.Platform, doc page.Document) domain.PartialRecord {
	var p domain.PartialRecord
	for _, f := range e.Catalog.FieldsFor(platform) {
		if f == selector.FieldThumbnail {
			p.Thumbnail = mediaSource(e.findFirstMedia(f, platform, doc))
			continue
		}
		v := NormalizeText(e.FindFirstMatch(f, platform, doc))
		switch f {
		case selector.FieldTitle:
			p.Title = v
		case selector.FieldDescription:
			p.Description = v
		case selector.FieldDuration:
			p.Duration = v
		case selector.FieldViews:
			p.Views = v
		case selector.FieldAuthor:
			p.Author = v
		}
	}
	return p
}

// ExtractGeneric 是未知平台的回退：文档标题 + Open Graph / Twitter card meta + 首个 video 的 poster。
// 多个匹配 meta 时按文档顺序后者覆盖前者；空 content 不覆盖。
func (e *Extractor) ExtractGeneric(doc page.Document) domain.PartialRecord {
	var p domain.PartialRecord
	if doc == nil {
		return p
	}
	p.Title = doc.Title()

	metas, err := doc.QueryAll("meta")
	if err != nil {
		e.logger().Warn("meta scan failed", "err", err)
	}
	for _, m := range metas {
		key, ok := m.Attr("property")
		if !ok || key == "" {
			key, _ = m.Attr("name")
		}
		content, _ := m.Attr("content")
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		switch key {
		case "og:title", "twitter:title":
			p.Title = content
		case "og:description", "twitter:description", "description":
			p.Description = content
		}
	}

	video, err := doc.QueryFirst("video")
	if err != nil {
		e.logger().Warn("video lookup failed", "err", err)
	} else if video != nil {
		if poster, ok := video.Attr("poster"); ok {
			p.Thumbnail = strings.TrimSpace(poster)
		}
	}
	return p
}

// Scan 提取当前页面的视频信息。任何意外都会被转换为失败 Outcome，不会向外 panic。
func (e *Extractor) Scan(p page.Page) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger().Error("scan panicked", "panic", r)
			out = domain.Failure(panicMessage(r))
		}
	}()

	if p == nil {
		return domain.Failure("no page to scan")
	}
	url := p.URL()
	platform := DetectPlatform(url)
	doc := p.Document()
	if doc == nil {
		return domain.Failure("page document is not available")
	}
	e.logger().Debug("scanning page", "url", url, "platform", platform)

	var partial domain.PartialRecord
	if platform.Supported() && e.Catalog.Has(platform) {
		partial = e.ExtractStructured(platform, doc)
	} else {
		partial = e.ExtractGeneric(doc)
	}

	if partial.Title == "" {
		partial.Title = doc.Title()
	}
	if partial.Title == "" {
		partial.Title = domain.NoTitleSentinel
	}

	rec, err := domain.NewVideoRecord(partial, url, platform)
	if err != nil {
		return domain.Failure(fmt.Sprintf("No video content found on this %s page", platform))
	}
	e.logger().Debug("video info extracted", "url", url, "title", rec.Title)
	return domain.Success(rec)
}

func panicMessage(r any) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
