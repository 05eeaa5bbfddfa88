package controller

import (
	"context"
	"testing"
	"time"

	"github.com/John-Robertt/reprompt/internal/domain"
	"github.com/John-Robertt/reprompt/internal/messenger"
)

type stubRequester struct {
	outs  []domain.Outcome
	calls int
}

func (s *stubRequester) SendExtractionRequest(ctx context.Context, target messenger.TargetID, payload map[string]any) domain.Outcome {
	out := s.outs[s.calls]
	s.calls++
	return out
}

func record(t *testing.T, title string) domain.VideoRecord {
	t.Helper()
	r, err := domain.NewVideoRecord(domain.PartialRecord{Title: title}, "https://youtube.com/watch?v=1", domain.PlatformYouTube)
	if err != nil {
		t.Fatalf("构造记录失败：%v", err)
	}
	return r
}

func TestParse_SuccessThenFailureDropsOldRecord(t *testing.T) {
	req := &stubRequester{outs: []domain.Outcome{
		domain.Success(record(t, "first")),
		domain.Failure("no response from target"),
	}}
	c := New(req)
	c.CheckTab("https://youtube.com/watch?v=1")

	c.Parse(context.Background(), 1, c.URL())
	if r, ok := c.Result(); !ok || r.Title != "first" {
		t.Fatalf("期望记录 first，实际 %+v ok=%v", r, ok)
	}

	c.Parse(context.Background(), 1, c.URL())
	if _, ok := c.Result(); ok {
		t.Fatalf("新请求失败后不应保留旧记录")
	}
	if c.ErrorText() != "no response from target" {
		t.Fatalf("受支持页面不应附加提示，实际 %q", c.ErrorText())
	}
	if c.Loading() {
		t.Fatalf("请求结束后 Loading 应为 false")
	}
}

func TestErrorText_UnsupportedHint(t *testing.T) {
	req := &stubRequester{outs: []domain.Outcome{domain.Failure("No video content found on this unknown page")}}
	c := New(req)
	c.CheckTab("https://example.com")
	if c.Supported() {
		t.Fatalf("example.com 不应受支持")
	}

	c.Parse(context.Background(), 3, c.URL())
	want := "No video content found on this unknown page\n" + UnsupportedHint
	if got := c.ErrorText(); got != want {
		t.Fatalf("期望 %q，实际 %q", want, got)
	}
}

func TestParse_MissingTabOrURL(t *testing.T) {
	req := &stubRequester{}
	c := New(req)

	out := c.Parse(context.Background(), 0, "https://youtube.com")
	if out.Reason() != ErrNoActiveTab {
		t.Fatalf("期望 %q，实际 %q", ErrNoActiveTab, out.Reason())
	}
	out = c.Parse(context.Background(), 1, "  ")
	if out.Reason() != ErrNoTabURL {
		t.Fatalf("期望 %q，实际 %q", ErrNoTabURL, out.Reason())
	}
	if req.calls != 0 {
		t.Fatalf("缺少标签页信息时不应发起请求，实际 %d 次", req.calls)
	}
}

func TestClear(t *testing.T) {
	req := &stubRequester{outs: []domain.Outcome{domain.Failure("boom")}}
	c := New(req)
	c.CheckTab("https://www.instagram.com/reel/x")
	c.Parse(context.Background(), 1, c.URL())
	if c.Err() != "boom" {
		t.Fatalf("期望错误 boom，实际 %q", c.Err())
	}

	c.Clear()
	if c.Err() != "" || c.ErrorText() != "" {
		t.Fatalf("Clear 后不应有错误")
	}
	if _, ok := c.Result(); ok {
		t.Fatalf("Clear 后不应有记录")
	}
}

// gatedRequester 按 target 返回结果；target 1 会阻塞到 release 关闭。
type gatedRequester struct {
	started chan struct{}
	release chan struct{}
	slow    domain.Outcome
	fast    domain.Outcome
}

func (g *gatedRequester) SendExtractionRequest(ctx context.Context, target messenger.TargetID, payload map[string]any) domain.Outcome {
	if target == 1 {
		close(g.started)
		<-g.release
		return g.slow
	}
	return g.fast
}

func TestParse_StaleCompletionDoesNotOverwriteNewer(t *testing.T) {
	g := &gatedRequester{
		started: make(chan struct{}),
		release: make(chan struct{}),
		slow:    domain.Failure("old request failed"),
		fast:    domain.Success(record(t, "newer")),
	}
	c := New(g)
	c.CheckTab("https://youtube.com/watch?v=1")

	done := make(chan domain.Outcome, 1)
	go func() { done <- c.Parse(context.Background(), 1, c.URL()) }()
	<-g.started

	c.Parse(context.Background(), 2, c.URL())
	close(g.release)

	select {
	case out := <-done:
		if out.Reason() != "old request failed" {
			t.Fatalf("较早请求仍应把自己的结果返回给调用方，实际 %q", out.Reason())
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("较早的请求没有结束")
	}

	if r, ok := c.Result(); !ok || r.Title != "newer" {
		t.Fatalf("期望保留最近一次请求的记录 newer，实际 %+v ok=%v", r, ok)
	}
	if c.Err() != "" {
		t.Fatalf("迟到的失败不应写入错误，实际 %q", c.Err())
	}
}

func TestClear_DropsInFlightResult(t *testing.T) {
	g := &gatedRequester{
		started: make(chan struct{}),
		release: make(chan struct{}),
		slow:    domain.Success(record(t, "late")),
	}
	c := New(g)

	done := make(chan struct{})
	go func() {
		c.Parse(context.Background(), 1, "https://youtube.com/watch?v=1")
		close(done)
	}()
	<-g.started
	c.Clear()
	close(g.release)
	<-done

	if _, ok := c.Result(); ok {
		t.Fatalf("Clear 之后完成的请求不应写入记录")
	}
	if c.Loading() {
		t.Fatalf("Clear 后 Loading 应为 false")
	}
}
