package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/John-Robertt/reprompt/internal/domain"
	"github.com/John-Robertt/reprompt/internal/messenger"
	"github.com/John-Robertt/reprompt/internal/page"
)

// Tab 是一个页面上下文：当前地址、实时文档，以及（可能没有的）监听器。
// Tab 实现 page.Page，读到的总是最新导航后的内容。
type Tab struct {
	id  messenger.TargetID
	log *slog.Logger

	mu       sync.RWMutex
	url      string
	doc      page.Document
	listener *listener
	closed   bool
}

var _ page.Page = (*Tab)(nil)

func (t *Tab) ID() messenger.TargetID { return t.id }

func (t *Tab) URL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.url
}

func (t *Tab) Document() page.Document {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.doc
}

func (t *Tab) Closed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// Navigate 替换地址与文档。整页导航会丢弃已注册的监听器。
func (t *Tab) Navigate(url string, doc page.Document) {
	t.mu.Lock()
	old := t.listener
	t.url = url
	t.doc = doc
	t.listener = nil
	t.mu.Unlock()
	if old != nil {
		old.stop()
	}
}

// Update 只替换文档（SPA 渲染），保留监听器。
func (t *Tab) Update(doc page.Document) {
	t.mu.Lock()
	t.doc = doc
	t.mu.Unlock()
}

// Install 注册处理器并启动该页面的事件循环；已有监听器时先停掉旧的。
func (t *Tab) Install(h Handler) {
	l := newListener(h, t.log.With("tab", int(t.id)))
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		l.stop()
		return
	}
	old := t.listener
	t.listener = l
	t.mu.Unlock()
	if old != nil {
		old.stop()
	}
}

// HasListener 表示当前是否有注册的监听器。
func (t *Tab) HasListener() bool {
	return t.currentListener() != nil
}

func (t *Tab) currentListener() *listener {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.listener
}

func (t *Tab) close() {
	t.mu.Lock()
	old := t.listener
	t.listener = nil
	t.closed = true
	t.mu.Unlock()
	if old != nil {
		old.stop()
	}
}

type envelope struct {
	ctx   context.Context
	req   domain.Request
	reply chan *domain.Response
}

// listener 是单个页面上下文的事件循环：按到达顺序逐个处理请求。
type listener struct {
	h    Handler
	log  *slog.Logger
	reqs chan envelope

	once sync.Once
	done chan struct{}
}

func newListener(h Handler, log *slog.Logger) *listener {
	l := &listener{
		h:    h,
		log:  log,
		reqs: make(chan envelope),
		done: make(chan struct{}),
	}
	go l.serve()
	return l
}

func (l *listener) serve() {
	for {
		select {
		case <-l.done:
			return
		case env := <-l.reqs:
			env.reply <- l.handle(env)
		}
	}
}

func (l *listener) handle(env envelope) (resp *domain.Response) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("handler panicked", "panic", fmt.Sprint(r))
			resp = nil
		}
	}()
	return l.h.Handle(env.ctx, env.req)
}

func (l *listener) stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *listener) call(ctx context.Context, req domain.Request) (*domain.Response, error) {
	env := envelope{ctx: ctx, req: req, reply: make(chan *domain.Response, 1)}
	select {
	case l.reqs <- env:
	case <-l.done:
		return nil, messenger.ErrNoReceiver
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-env.reply:
		return resp, nil
	case <-l.done:
		return nil, ErrPortClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
