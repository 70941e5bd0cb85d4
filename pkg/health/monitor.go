package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lwmacct/251215-go-pkg-mbox/pkg/actor"
)

// ═══════════════════════════════════════════════════════════════════════════
// 请求与响应
// ═══════════════════════════════════════════════════════════════════════════

// Check 健康检查请求
type Check struct {
	ID uuid.UUID
}

// NewCheck 创建带随机 ID 的检查请求
func NewCheck() Check {
	return Check{ID: uuid.New()}
}

// Kind 实现 actor.Kinded 接口
func (c Check) Kind() string { return "health.check" }

// Report 健康检查响应
type Report struct {
	CheckID uuid.UUID
	Message Message
}

// Kind 实现 actor.Kinded 接口
func (r Report) Kind() string { return "health.report" }

// ═══════════════════════════════════════════════════════════════════════════
// 构建器
// ═══════════════════════════════════════════════════════════════════════════

// Builder Monitor 构建器，实现 actor.ServiceProvider
type Builder struct {
	topic  ServiceHealthTopic
	server *actor.ServerMessageBoxBuilder[Check, Report]
}

// NewBuilder 创建 Monitor 构建器
func NewBuilder(name string, topic ServiceHealthTopic, capacity int) *Builder {
	return &Builder{
		topic:  topic,
		server: actor.NewServerMessageBoxBuilder[Check, Report](name, capacity),
	}
}

// ConnectClient 实现 actor.ServiceProvider 接口
func (b *Builder) ConnectClient(responses actor.Sender[Report]) actor.Sender[Check] {
	return b.server.ConnectClient(responses)
}

// GetSignalSender 返回 Monitor 的控制信号发送端，交给 Runtime.Spawn
func (b *Builder) GetSignalSender() actor.Sender[actor.RuntimeRequest] {
	return b.server.GetSignalSender()
}

// Build 构建 Monitor
func (b *Builder) Build(opts ...Option) *Monitor {
	m := &Monitor{
		topic:   b.topic,
		box:     b.server.Build(),
		publish: actor.NullSender[Message]{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = actor.Logger().With("actor", m.Name())
	return m
}

// Option Monitor 选项
type Option func(*Monitor)

// WithPublisher 设置健康消息的发布端
func WithPublisher(publish actor.Sender[Message]) Option {
	return func(m *Monitor) {
		if publish != nil {
			m.publish = publish
		}
	}
}

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Monitor
// ═══════════════════════════════════════════════════════════════════════════

// downTimeout 发布 down 消息的最长等待时间
const downTimeout = time.Second

// Monitor 健康监控 Actor
type Monitor struct {
	topic   ServiceHealthTopic
	box     *actor.ServerMessageBox[Check, Report]
	publish actor.Sender[Message]
	now     func() time.Time
	logger  *slog.Logger
}

var _ actor.Actor = (*Monitor)(nil)

// Name 实现 actor.Actor 接口
func (m *Monitor) Name() string { return m.box.Name() }

// Topic 返回健康主题
func (m *Monitor) Topic() ServiceHealthTopic { return m.topic }

// Box 返回 Monitor 的消息盒，用于调整日志开关
func (m *Monitor) Box() actor.MessageBox { return m.box }

// Run 实现 actor.Actor 接口
// 启动时发布 up，输入结束后发布 down 并关闭所有客户端的响应通道
func (m *Monitor) Run(ctx context.Context) error {
	defer m.box.CloseOutput()

	m.publishStatus(ctx, m.topic.UpMessage(m.now()))

	for {
		req, ok := m.box.Recv(ctx)
		if !ok {
			break
		}

		report := Report{CheckID: req.Payload.ID, Message: m.topic.UpMessage(m.now())}
		if err := m.box.Send(ctx, actor.ReplyTo(req, report)); err != nil {
			m.logger.Warn("failed to reply to health check", "client", req.Client, "error", err)
		}
	}

	// ctx 可能已取消，down 消息仍然尝试投递
	downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), downTimeout)
	defer cancel()
	m.publishStatus(downCtx, m.topic.DownMessage())
	m.publish.CloseSender()
	return actor.IgnoreContextError(ctx.Err())
}

func (m *Monitor) publishStatus(ctx context.Context, msg Message) {
	if err := m.publish.Send(ctx, msg); err != nil {
		m.logger.Warn("failed to publish health status", "topic", msg.Topic, "error", err)
	}
}
