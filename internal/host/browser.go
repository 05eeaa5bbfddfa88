package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/John-Robertt/reprompt/internal/domain"
	"github.com/John-Robertt/reprompt/internal/messenger"
	"github.com/John-Robertt/reprompt/internal/page"
)

// Handler 是页面上下文中注册的消息处理器。
type Handler interface {
	Handle(ctx context.Context, req domain.Request) *domain.Response
}

// Script 是可按名注入的脚本资源：给定页面，返回要注册的处理器。
type Script func(p page.Page) Handler

var (
	// ErrNoTab 表示目标 id 没有对应的（未关闭的）标签页。
	ErrNoTab = errors.New("no tab with id")
	// ErrPortClosed 表示监听器在应答前消失（导航或关闭）。
	ErrPortClosed = errors.New("message port closed before a response was received")
)

// restrictedPrefixes 是宿主不允许注入脚本的页面。
var restrictedPrefixes = []string{"chrome://", "chrome-extension://", "edge://", "about:", "view-source:"}

// Browser 是进程内的宿主环境：管理标签页（页面上下文）、脚本资源与消息投递。
// 它同时实现 messenger.Transport 与 messenger.Injector。
type Browser struct {
	mu      sync.Mutex
	tabs    map[messenger.TargetID]*Tab
	scripts map[string]Script
	nextID  messenger.TargetID

	Logger *slog.Logger
}

var (
	_ messenger.Transport = (*Browser)(nil)
	_ messenger.Injector  = (*Browser)(nil)
)

func NewBrowser(logger *slog.Logger) *Browser {
	return &Browser{
		tabs:    make(map[messenger.TargetID]*Tab),
		scripts: make(map[string]Script),
		Logger:  logger,
	}
}

func (b *Browser) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// RegisterScript 注册一个可注入的脚本资源。
func (b *Browser) RegisterScript(name string, s Script) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("script 名称不能为空")
	}
	if s == nil {
		return fmt.Errorf("script %q 不能为空", name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.scripts[name]; ok {
		return fmt.Errorf("重复的 script：%q", name)
	}
	b.scripts[name] = s
	return nil
}

// Open 打开一个新标签页并载入文档；新页面没有监听器。
func (b *Browser) Open(url string, doc page.Document) *Tab {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	t := &Tab{id: b.nextID, url: url, doc: doc, log: b.logger()}
	b.tabs[t.id] = t
	return t
}

// Tab 返回未关闭的标签页。
func (b *Browser) Tab(id messenger.TargetID) (*Tab, bool) {
	b.mu.Lock()
	t, ok := b.tabs[id]
	b.mu.Unlock()
	if !ok || t.Closed() {
		return nil, false
	}
	return t, true
}

// CloseTab 关闭标签页并移除；未完成的请求得到 ErrPortClosed。
func (b *Browser) CloseTab(id messenger.TargetID) {
	b.mu.Lock()
	t, ok := b.tabs[id]
	delete(b.tabs, id)
	b.mu.Unlock()
	if ok {
		t.close()
	}
}

// Close 关闭全部标签页。
func (b *Browser) Close() {
	b.mu.Lock()
	tabs := make([]*Tab, 0, len(b.tabs))
	for id, t := range b.tabs {
		tabs = append(tabs, t)
		delete(b.tabs, id)
	}
	b.mu.Unlock()
	for _, t := range tabs {
		t.close()
	}
}

// Send 把请求投递给标签页的监听器并等待应答。
// 没有监听器时返回包装了 messenger.ErrNoReceiver 的错误。
func (b *Browser) Send(ctx context.Context, target messenger.TargetID, req domain.Request) (*domain.Response, error) {
	t, ok := b.Tab(target)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoTab, target)
	}
	l := t.currentListener()
	if l == nil {
		return nil, messenger.ErrNoReceiver
	}
	return l.call(ctx, req)
}

// Inject 在标签页中执行名为 resource 的脚本，注册其处理器。
// 标签页已有监听器时保持不变（重复注入是幂等的）。
func (b *Browser) Inject(ctx context.Context, target messenger.TargetID, resource string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	s, ok := b.scripts[resource]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("could not load file: %q", resource)
	}
	t, ok := b.Tab(target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoTab, target)
	}
	if u := strings.ToLower(t.URL()); isRestricted(u) {
		return fmt.Errorf("cannot access contents of url %q", t.URL())
	}
	if t.currentListener() != nil {
		return nil
	}
	t.Install(s(t))
	b.logger().Debug("script injected", "tab", int(target), "resource", resource)
	return nil
}

func isRestricted(u string) bool {
	for _, p := range restrictedPrefixes {
		if strings.HasPrefix(u, p) {
			return true
		}
	}
	return false
}
