package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/John-Robertt/reprompt/internal/domain"
	"github.com/John-Robertt/reprompt/internal/extract"
	"github.com/John-Robertt/reprompt/internal/messenger"
)

// UnsupportedHint 在当前页面已知不受支持且提取失败时附加到错误文本后。
const UnsupportedHint = "Try navigating to a YouTube or Instagram video page."

const (
	ErrNoActiveTab = "No active tab found"
	ErrNoTabURL    = "No URL found in current tab"
)

// Requester 是控制端发起提取请求的能力（通常是 *messenger.Messenger）。
type Requester interface {
	SendExtractionRequest(ctx context.Context, target messenger.TargetID, payload map[string]any) domain.Outcome
}

// Controller 持有控制面板的展示状态：当前页面、最近一次结果或错误。
//
// 约束：
// - 结果只归属于最近一次请求；新请求开始时丢弃旧结果
// - Clear 丢弃结果与错误
type Controller struct {
	req Requester

	mu        sync.Mutex
	url       string
	supported bool
	loading   bool
	gen       uint64
	record    *domain.VideoRecord
	err       string
}

func New(req Requester) *Controller {
	return &Controller{req: req}
}

// CheckTab 记录当前标签页的地址与是否受支持。
func (c *Controller) CheckTab(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = url
	c.supported = extract.DetectPlatform(url).Supported()
}

// Parse 请求 target 页面提取视频信息并记录结果。
// 并发调用时只记录最近一次请求的结果；较早请求迟到的结果被丢弃（仍返回给调用方）。
func (c *Controller) Parse(ctx context.Context, target messenger.TargetID, url string) domain.Outcome {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.record = nil
	c.err = ""
	c.loading = true
	c.mu.Unlock()

	out := c.parse(ctx, target, url)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return out
	}
	c.loading = false
	if r, ok := out.Record(); ok {
		c.record = &r
	} else {
		c.err = out.Reason()
	}
	return out
}

func (c *Controller) parse(ctx context.Context, target messenger.TargetID, url string) domain.Outcome {
	if target <= 0 {
		return domain.Failure(ErrNoActiveTab)
	}
	if strings.TrimSpace(url) == "" {
		return domain.Failure(ErrNoTabURL)
	}
	if c.req == nil {
		return domain.Failure(messenger.ReasonDeliveryFailed + ": no requester")
	}
	return c.req.SendExtractionRequest(ctx, target, nil)
}

// Clear 丢弃当前结果与错误；进行中请求的结果也不再记录。
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.loading = false
	c.record = nil
	c.err = ""
}

func (c *Controller) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

func (c *Controller) Supported() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supported
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Result 返回最近一次成功的记录。
func (c *Controller) Result() (domain.VideoRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.record == nil {
		return domain.VideoRecord{}, false
	}
	return *c.record, true
}

// Err 返回最近一次失败的原因（原文）。
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ErrorText 是展示给用户的错误：原因原文；页面已知不受支持时附加导航提示。
func (c *Controller) ErrorText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == "" {
		return ""
	}
	if c.url != "" && !c.supported {
		return c.err + "\n" + UnsupportedHint
	}
	return c.err
}
