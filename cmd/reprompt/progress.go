package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/John-Robertt/reprompt/internal/messenger"
)

var _ messenger.Observer = (*progress)(nil)

// progress 在交互终端上逐行输出协议步骤（写 stderr，不影响 stdout）。
type progress struct {
	mu sync.Mutex
	w  io.Writer
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w}
}

func (p *progress) OnDeliver(target messenger.TargetID, attempt int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status := "ok"
	if err != nil {
		status = err.Error()
	}
	fmt.Fprintf(p.w, "[%s] deliver tab=%d attempt=%d: %s\n", time.Now().Format("15:04:05"), target, attempt, status)
}

func (p *progress) OnInject(target messenger.TargetID, resource string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status := "ok"
	if err != nil {
		status = err.Error()
	}
	fmt.Fprintf(p.w, "[%s] inject %s tab=%d: %s\n", time.Now().Format("15:04:05"), resource, target, status)
}
