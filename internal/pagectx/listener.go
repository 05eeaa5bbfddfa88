package pagectx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/John-Robertt/reprompt/internal/domain"
	"github.com/John-Robertt/reprompt/internal/extract"
	"github.com/John-Robertt/reprompt/internal/page"
)

// kind 是请求信封的封闭分类；新增请求类型必须在这里加一个变体并在 Handle 中处理。
type kind int

const (
	kindUnknown kind = iota
	kindExtractVideoInfo
)

func classify(req domain.Request) kind {
	switch {
	case req.Type == domain.MessageExtractVideoInfo:
		return kindExtractVideoInfo
	case req.Type == "" && req.Action == domain.LegacyActionExtract:
		return kindExtractVideoInfo
	default:
		return kindUnknown
	}
}

// Listener 是页面上下文里的消息处理器（内容脚本）。
//
// 约束：
// - 任何请求都必须得到一个应答；未知类型返回 "Unknown message type"
// - 处理过程中的意外不会让监听器退出，只转换为失败应答
type Listener struct {
	Extractor *extract.Extractor

	// MaxWait 是提取前内容就绪等待的上限；< 0 使用 extract.DefaultMaxWait。
	MaxWait time.Duration

	Logger *slog.Logger
}

func (l *Listener) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Bind 把监听器绑定到某个页面，得到可注册到宿主的会话。
func (l *Listener) Bind(p page.Page) *Session {
	return &Session{l: l, p: p}
}

// Session 是绑定到单个页面的监听器实例。
type Session struct {
	l *Listener
	p page.Page
}

// Handle 分发一个请求并返回应答（永不为 nil）。
// 日志带上请求的 request_id，与控制端同一请求的日志对应。
func (s *Session) Handle(ctx context.Context, req domain.Request) *domain.Response {
	log := s.l.logger().With("request_id", req.ID)
	log.Debug("received message", "type", req.Type, "action", req.Action)

	var resp *domain.Response
	switch classify(req) {
	case kindExtractVideoInfo:
		resp = s.extract(ctx)
	default:
		resp = &domain.Response{Success: false, Error: domain.ErrUnknownMessageType}
	}
	log.Debug("replied", "success", resp.Success, "error", resp.Error)
	return resp
}

func (s *Session) extract(ctx context.Context) (resp *domain.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = &domain.Response{Success: false, Error: fmt.Sprintf("Failed to scan window: %v", r)}
		}
	}()
	if s.l.Extractor == nil {
		return &domain.Response{Success: false, Error: "Failed to scan window: extractor not configured"}
	}
	s.l.Extractor.WaitForContentReady(ctx, s.p, s.l.MaxWait)
	return s.l.Extractor.Scan(s.p).Response()
}
