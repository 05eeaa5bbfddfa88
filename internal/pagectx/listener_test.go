package pagectx

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/John-Robertt/reprompt/internal/domain"
	"github.com/John-Robertt/reprompt/internal/extract"
	"github.com/John-Robertt/reprompt/internal/page"
	"github.com/John-Robertt/reprompt/internal/selector"
)

func newListener() *Listener {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Listener{
		Extractor: extract.New(selector.Default(), log),
		MaxWait:   0,
		Logger:    log,
	}
}

func youtubePage() page.Page {
	return page.Static{
		Addr: "https://www.youtube.com/watch?v=1",
		Doc:  page.MustParseHTML(`<title>t</title><h1 class="ytd-video-primary-info-renderer">Cool Clip</h1>`),
	}
}

func TestHandle_ExtractVideoInfo(t *testing.T) {
	s := newListener().Bind(youtubePage())
	resp := s.Handle(context.Background(), domain.Request{Type: domain.MessageExtractVideoInfo})
	if resp == nil || !resp.Success || resp.Data == nil {
		t.Fatalf("期望成功应答，实际 %+v", resp)
	}
	if resp.Data.Title != "Cool Clip" {
		t.Fatalf("期望 title=Cool Clip，实际=%q", resp.Data.Title)
	}
}

func TestHandle_LegacyAction(t *testing.T) {
	s := newListener().Bind(youtubePage())
	resp := s.Handle(context.Background(), domain.Request{Action: domain.LegacyActionExtract})
	if resp == nil || !resp.Success {
		t.Fatalf("旧版 action 应被接受，实际 %+v", resp)
	}
}

func TestHandle_UnknownType(t *testing.T) {
	s := newListener().Bind(youtubePage())
	for _, req := range []domain.Request{
		{Type: "GENERATE_PROMPT"},
		{},
		{Action: "somethingElse"},
	} {
		resp := s.Handle(context.Background(), req)
		if resp == nil || resp.Success || resp.Error != domain.ErrUnknownMessageType {
			t.Fatalf("req=%+v 期望 Unknown message type，实际 %+v", req, resp)
		}
	}
	// 未知类型之后监听器仍可用。
	if resp := s.Handle(context.Background(), domain.Request{Type: domain.MessageExtractVideoInfo}); !resp.Success {
		t.Fatalf("未知请求后监听器应继续工作，实际 %+v", resp)
	}
}

func TestHandle_ValidationFailureIsResponse(t *testing.T) {
	p := page.Static{Addr: "https://youtube.com/watch?v=2", Doc: page.MustParseHTML(`<p>nothing</p>`)}
	resp := newListener().Bind(p).Handle(context.Background(), domain.Request{Type: domain.MessageExtractVideoInfo})
	if resp.Success || !strings.Contains(resp.Error, "No video content found") {
		t.Fatalf("期望校验失败应答，实际 %+v", resp)
	}
}

func TestHandle_NoExtractor(t *testing.T) {
	l := &Listener{}
	resp := l.Bind(youtubePage()).Handle(context.Background(), domain.Request{Type: domain.MessageExtractVideoInfo})
	if resp.Success || !strings.HasPrefix(resp.Error, "Failed to scan window") {
		t.Fatalf("期望 Failed to scan window，实际 %+v", resp)
	}
}

func TestHandle_LogsRequestID(t *testing.T) {
	var logs bytes.Buffer
	l := newListener()
	l.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.Bind(youtubePage()).Handle(context.Background(), domain.Request{Type: domain.MessageExtractVideoInfo, ID: "req-42"})
	out := logs.String()
	if strings.Count(out, "request_id=req-42") < 2 {
		t.Fatalf("收到与应答的日志都应带 request_id，实际：%s", out)
	}
}
