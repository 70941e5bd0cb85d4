package actor

import (
	"context"
	"log/slog"
	"sync"
)

// ═══════════════════════════════════════════════════════════════════════════
// 类型适配发送端
// ═══════════════════════════════════════════════════════════════════════════

type adaptedSender[From, To any] struct {
	inner   Sender[To]
	convert func(From) To
}

// Adapt 把 Sender[To] 适配为 Sender[From]
// 每条消息在边界处经过 convert 转换，用于连接消息类型不同的两个消息盒
func Adapt[From, To any](inner Sender[To], convert func(From) To) Sender[From] {
	return &adaptedSender[From, To]{inner: inner, convert: convert}
}

func (s *adaptedSender[From, To]) Send(ctx context.Context, msg From) error {
	return s.inner.Send(ctx, s.convert(msg))
}

func (s *adaptedSender[From, To]) CloseSender() {
	s.inner.CloseSender()
}

// ═══════════════════════════════════════════════════════════════════════════
// 日志发送端
// ═══════════════════════════════════════════════════════════════════════════

// LoggingSender 发送前记录日志的发送端
type LoggingSender[M any] struct {
	boxLog
	inner Sender[M]
}

// NewLoggingSender 创建日志发送端，name 作为日志命名空间
func NewLoggingSender[M any](name string, inner Sender[M]) *LoggingSender[M] {
	return &LoggingSender[M]{boxLog: newBoxLog(name), inner: inner}
}

// Send 实现 Sender 接口
func (s *LoggingSender[M]) Send(ctx context.Context, msg M) error {
	s.LogOutput(msg)
	return s.inner.Send(ctx, msg)
}

// CloseSender 实现 Sender 接口
func (s *LoggingSender[M]) CloseSender() {
	s.inner.CloseSender()
}

// ═══════════════════════════════════════════════════════════════════════════
// 空发送端
// ═══════════════════════════════════════════════════════════════════════════

// NullSender 丢弃所有消息的发送端，用于没有输出的 Actor
type NullSender[M any] struct{}

// Send 实现 Sender 接口
func (NullSender[M]) Send(context.Context, M) error { return nil }

// CloseSender 实现 Sender 接口
func (NullSender[M]) CloseSender() {}

// ═══════════════════════════════════════════════════════════════════════════
// 客户端路由发送端
// ═══════════════════════════════════════════════════════════════════════════

// clientRouter 服务端的输出：按 ClientID 把响应投递给对应客户端
type clientRouter[Resp any] struct {
	mu      sync.RWMutex
	clients map[ClientID]Sender[Resp]
	logger  *slog.Logger
}

func newClientRouter[Resp any](name string) *clientRouter[Resp] {
	return &clientRouter[Resp]{
		clients: make(map[ClientID]Sender[Resp]),
		logger:  Logger().With("box", name),
	}
}

func (r *clientRouter[Resp]) register(id ClientID, responses Sender[Resp]) {
	r.mu.Lock()
	r.clients[id] = responses
	r.mu.Unlock()
}

func (r *clientRouter[Resp]) Send(ctx context.Context, msg Envelope[Resp]) error {
	r.mu.RLock()
	client, ok := r.clients[msg.Client]
	r.mu.RUnlock()

	if !ok {
		return sendError("unknown " + msg.Client.String())
	}
	return client.Send(ctx, msg.Payload)
}

// CloseSender 关闭所有客户端的响应通道
func (r *clientRouter[Resp]) CloseSender() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, client := range r.clients {
		client.CloseSender()
		r.logger.Debug("client disconnected", "client", id)
	}
}
