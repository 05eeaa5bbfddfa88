package messenger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/reprompt/internal/domain"
)

const (
	// DefaultResource 是按需注入的内容脚本资源名。
	DefaultResource = "content.js"
	// DefaultInjectDelay 是注入后等待监听器注册的时间。
	DefaultInjectDelay = 500 * time.Millisecond
)

// 失败原因前缀（对用户可见）。
const (
	ReasonInjectionFailed          = "injection failed"
	ReasonNoResponse               = "no response from target"
	ReasonNoResponseAfterInjection = "no response from target after injection"
	ReasonDeliveryFailed           = "delivery failed"
	ReasonCanceled                 = "request canceled"
)

// ErrNoReceiver 表示目标页面上下文没有注册监听器。
// Transport 必须返回（或包装）该错误，Messenger 据此决定是否注入。
var ErrNoReceiver = errors.New("could not establish connection: receiving end does not exist")

// TargetID 标识一个页面上下文（例如标签页）。
type TargetID int

// Transport 把请求送到目标页面上下文并等待单个应答。
// 应答可能为 nil（对端未回复任何内容）。
type Transport interface {
	Send(ctx context.Context, target TargetID, req domain.Request) (*domain.Response, error)
}

// Injector 把命名脚本资源加载到目标页面上下文。
type Injector interface {
	Inject(ctx context.Context, target TargetID, resource string) error
}

// Observer 接收协议过程事件（可选）。实现必须并发安全。
type Observer interface {
	OnDeliver(target TargetID, attempt int, err error)
	OnInject(target TargetID, resource string, err error)
}

// Messenger 是控制端的请求/应答协议：投递 -> 无监听器则注入 -> 等待 -> 重试一次。
//
// 约束：
// - 每个请求最多注入一次，且只在 ErrNoReceiver 时注入
// - 请求之间不排队、不合并；并发请求各自独立投递/注入
// - 消息往返本身没有超时；只有 ctx 能提前结束等待
type Messenger struct {
	Transport Transport
	Injector  Injector

	// Resource 为空时使用 DefaultResource。
	Resource string
	// InjectDelay 为 0 时使用 DefaultInjectDelay。
	InjectDelay time.Duration

	Observer Observer
	Logger   *slog.Logger
}

func (m *Messenger) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func (m *Messenger) resource() string {
	if m.Resource == "" {
		return DefaultResource
	}
	return m.Resource
}

func (m *Messenger) injectDelay() time.Duration {
	if m.InjectDelay <= 0 {
		return DefaultInjectDelay
	}
	return m.InjectDelay
}

// SendExtractionRequest 请求目标页面提取视频信息。所有失败都以 Outcome 返回，不返回 error。
func (m *Messenger) SendExtractionRequest(ctx context.Context, target TargetID, payload map[string]any) domain.Outcome {
	if m.Transport == nil || m.Injector == nil {
		return domain.Failure(ReasonDeliveryFailed + ": messenger not configured")
	}
	req := domain.Request{
		Type:    domain.MessageExtractVideoInfo,
		ID:      uuid.NewString(),
		Payload: payload,
	}
	log := m.logger().With("target", int(target), "request_id", req.ID)

	resp, err := m.deliver(ctx, target, req, 1)
	if err == nil {
		if empty(resp) {
			return domain.Failure(ReasonNoResponse)
		}
		log.Debug("direct response", "success", resp.Success)
		return resp.Outcome()
	}
	if ctx.Err() != nil {
		return domain.Failure(fmt.Sprintf("%s: %v", ReasonCanceled, ctx.Err()))
	}
	if !errors.Is(err, ErrNoReceiver) {
		return domain.Failure(fmt.Sprintf("%s: %v", ReasonDeliveryFailed, err))
	}

	res := m.resource()
	log.Info("no listener in target, injecting", "resource", res)
	ierr := m.Injector.Inject(ctx, target, res)
	if m.Observer != nil {
		m.Observer.OnInject(target, res, ierr)
	}
	if ierr != nil {
		log.Error("injection failed", "err", ierr)
		return domain.Failure(fmt.Sprintf("%s: %v", ReasonInjectionFailed, ierr))
	}

	if err := sleep(ctx, m.injectDelay()); err != nil {
		return domain.Failure(fmt.Sprintf("%s: %v", ReasonCanceled, err))
	}

	resp, err = m.deliver(ctx, target, req, 2)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Failure(fmt.Sprintf("%s: %v", ReasonCanceled, ctx.Err()))
		}
		return domain.Failure(fmt.Sprintf("%s: %v", ReasonNoResponseAfterInjection, err))
	}
	if empty(resp) {
		return domain.Failure(ReasonNoResponseAfterInjection)
	}
	log.Debug("response after injection", "success", resp.Success)
	return resp.Outcome()
}

func (m *Messenger) deliver(ctx context.Context, target TargetID, req domain.Request, attempt int) (*domain.Response, error) {
	resp, err := m.Transport.Send(ctx, target, req)
	if m.Observer != nil {
		m.Observer.OnDeliver(target, attempt, err)
	}
	return resp, err
}

// empty 表示对端没有给出任何内容：既没有 data 也没有 error。
func empty(resp *domain.Response) bool {
	return resp == nil || (resp.Data == nil && resp.Error == "")
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
