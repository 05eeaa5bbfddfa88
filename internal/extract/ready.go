package extract

import (
	"context"
	"time"

	"github.com/John-Robertt/reprompt/internal/domain"
	"github.com/John-Robertt/reprompt/internal/page"
)

// ReadyState 是内容就绪等待的状态机：polling -> ready | timed_out | canceled。
type ReadyState int

const (
	StatePolling ReadyState = iota
	StateReady
	StateTimedOut
	StateCanceled
)

func (s ReadyState) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateReady:
		return "ready"
	case StateTimedOut:
		return "timed_out"
	case StateCanceled:
		return "canceled"
	default:
		return "invalid"
	}
}

// WaitForContentReady 以固定间隔轮询，直到平台已知且出现主标题或 video 元素，或超过 maxWait。
//
// 这是 SPA 的尽力而为门槛：永不失败，只会超时后放行。
// maxWait < 0 使用 DefaultMaxWait；maxWait == 0 只检查一次。
func (e *Extractor) WaitForContentReady(ctx context.Context, p page.Page, maxWait time.Duration) ReadyState {
	if maxWait < 0 {
		maxWait = DefaultMaxWait
	}
	interval := e.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	started := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	state := StatePolling
	for state == StatePolling {
		switch {
		case contentReady(p):
			state = StateReady
		case time.Since(started) >= maxWait:
			state = StateTimedOut
		default:
			select {
			case <-ctx.Done():
				state = StateCanceled
			case <-ticker.C:
			}
		}
	}
	e.logger().Debug("content readiness", "state", state, "elapsed", time.Since(started))
	return state
}

func contentReady(p page.Page) bool {
	if p == nil {
		return false
	}
	if DetectPlatform(p.URL()) == domain.PlatformUnknown {
		return false
	}
	doc := p.Document()
	if doc == nil {
		return false
	}
	for _, q := range []string{"h1", "video"} {
		if el, err := doc.QueryFirst(q); err == nil && el != nil {
			return true
		}
	}
	return false
}
