package actor

import (
	"context"
	"fmt"
)

// Kinded 可选的消息接口
// 实现此接口的消息在诊断日志中会额外带上 kind 字段
type Kinded interface {
	// Kind 返回消息类型标识
	Kind() string
}

// ClientID 客户端标识
// 由连接层单调分配，只用于响应路由，在服务端消息盒生命周期内唯一
type ClientID uint64

// String 返回 ClientID 的字符串表示
func (id ClientID) String() string {
	return fmt.Sprintf("client-%d", uint64(id))
}

// Envelope 携带客户端标识的消息
// 服务端消息盒的输入为 Envelope[Request]，输出为 Envelope[Response]
type Envelope[M any] struct {
	Client  ClientID
	Payload M
}

// ReplyTo 用同一个客户端标识包装响应
func ReplyTo[Req, Resp any](req Envelope[Req], resp Resp) Envelope[Resp] {
	return Envelope[Resp]{Client: req.Client, Payload: resp}
}

// RuntimeRequest 运行时控制信号
type RuntimeRequest int

const (
	// RuntimeRequestShutdown 请求 Actor 停止接收输入
	RuntimeRequestShutdown RuntimeRequest = iota
)

// String 返回控制信号名称
func (r RuntimeRequest) String() string {
	switch r {
	case RuntimeRequestShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// Kind 实现 Kinded 接口
func (r RuntimeRequest) Kind() string { return "runtime." + r.String() }

// Actor Actor 接口
// Actor 拥有一个名字和一个异步运行循环；运行循环独占一个消息盒，
// 通常在消息盒 Recv 返回流结束后返回
type Actor interface {
	// Name 返回 Actor 名称
	Name() string
	// Run 运行 Actor 直到输入结束或 ctx 被取消
	Run(ctx context.Context) error
}

// RunFunc 函数式 Actor 运行循环
type RunFunc func(ctx context.Context) error

type funcActor struct {
	name string
	run  RunFunc
}

func (a *funcActor) Name() string                  { return a.name }
func (a *funcActor) Run(ctx context.Context) error { return a.run(ctx) }

// NewActor 用函数创建 Actor，便于快速创建简单 Actor
func NewActor(name string, run RunFunc) Actor {
	return &funcActor{name: name, run: run}
}
