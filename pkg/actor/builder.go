package actor

import (
	"sync/atomic"
)

// signalCapacity 控制通道容量
const signalCapacity = 4

// MessageBoxBuilder 基础消息盒构建器
//
// 构建前可以取得输入发送端与控制信号发送端交给对端；
// Build 时构建器释放自己持有的发送端，只剩对端持有的那些。
type MessageBoxBuilder[In, Out any] struct {
	name     string
	capacity int

	inputSender  *ChanSender[In]
	input        *Receiver[In]
	signalSender *ChanSender[RuntimeRequest]
	signals      *Receiver[RuntimeRequest]

	output Sender[Out]
}

// NewMessageBoxBuilder 创建构建器，capacity 为输入通道容量
func NewMessageBoxBuilder[In, Out any](name string, capacity int) *MessageBoxBuilder[In, Out] {
	inputSender, input := NewChannel[In](capacity)
	signalSender, signals := NewChannel[RuntimeRequest](signalCapacity)
	return &MessageBoxBuilder[In, Out]{
		name:         name,
		capacity:     capacity,
		inputSender:  inputSender,
		input:        input,
		signalSender: signalSender,
		signals:      signals,
	}
}

// Name 返回消息盒名称
func (b *MessageBoxBuilder[In, Out]) Name() string { return b.name }

// Capacity 返回输入通道容量
func (b *MessageBoxBuilder[In, Out]) Capacity() int { return b.capacity }

// GetSender 返回连接到输入通道的新发送端
func (b *MessageBoxBuilder[In, Out]) GetSender() Sender[In] {
	return b.inputSender.Clone()
}

// GetSignalSender 返回连接到控制通道的新发送端
// 必须在 Build 之前取得，否则控制通道已经结束
func (b *MessageBoxBuilder[In, Out]) GetSignalSender() Sender[RuntimeRequest] {
	return b.signalSender.Clone()
}

// SetOutput 设置输出发送端
func (b *MessageBoxBuilder[In, Out]) SetOutput(output Sender[Out]) *MessageBoxBuilder[In, Out] {
	b.output = output
	return b
}

// Build 构建消息盒
// 未设置输出时使用 NullSender
func (b *MessageBoxBuilder[In, Out]) Build() *SimpleMessageBox[In, Out] {
	b.inputSender.CloseSender()
	b.signalSender.CloseSender()
	return NewSimpleMessageBox(b.name, b.input, b.signals, b.output)
}

// ConnectWith 把两个构建器首尾相连：一方的输出是另一方的输入
func ConnectWith[A, B any](left *MessageBoxBuilder[A, B], right *MessageBoxBuilder[B, A]) {
	left.SetOutput(right.GetSender())
	right.SetOutput(left.GetSender())
}

// ═══════════════════════════════════════════════════════════════════════════
// 服务端构建器
// ═══════════════════════════════════════════════════════════════════════════

// ServiceProvider 请求/响应服务的连接点
type ServiceProvider[Req, Resp any] interface {
	// ConnectClient 注册客户端的响应发送端，返回该客户端用于发送请求的发送端
	ConnectClient(responses Sender[Resp]) Sender[Req]
}

// ServerMessageBoxBuilder 服务端消息盒构建器
//
// 每个连接的客户端分配一个单调递增的 ClientID：
// 客户端的请求被包装为 Envelope 送入服务端输入通道，
// 服务端的响应按 ClientID 路由回该客户端。
type ServerMessageBoxBuilder[Req, Resp any] struct {
	box    *MessageBoxBuilder[Envelope[Req], Envelope[Resp]]
	router *clientRouter[Resp]
	nextID atomic.Uint64
}

// NewServerMessageBoxBuilder 创建服务端构建器
func NewServerMessageBoxBuilder[Req, Resp any](name string, capacity int) *ServerMessageBoxBuilder[Req, Resp] {
	b := &ServerMessageBoxBuilder[Req, Resp]{
		box:    NewMessageBoxBuilder[Envelope[Req], Envelope[Resp]](name, capacity),
		router: newClientRouter[Resp](name),
	}
	b.box.SetOutput(b.router)
	return b
}

// Name 返回消息盒名称
func (b *ServerMessageBoxBuilder[Req, Resp]) Name() string { return b.box.Name() }

// ConnectClient 实现 ServiceProvider 接口
// 客户端必须在 Build 之前连接
func (b *ServerMessageBoxBuilder[Req, Resp]) ConnectClient(responses Sender[Resp]) Sender[Req] {
	id := ClientID(b.nextID.Add(1))
	b.router.register(id, responses)
	return Adapt(b.box.GetSender(), func(req Req) Envelope[Req] {
		return Envelope[Req]{Client: id, Payload: req}
	})
}

// GetSignalSender 返回连接到控制通道的新发送端
func (b *ServerMessageBoxBuilder[Req, Resp]) GetSignalSender() Sender[RuntimeRequest] {
	return b.box.GetSignalSender()
}

// Build 构建服务端消息盒
func (b *ServerMessageBoxBuilder[Req, Resp]) Build() *ServerMessageBox[Req, Resp] {
	return b.box.Build()
}

// BuildConcurrent 构建并发服务端消息盒
func (b *ServerMessageBoxBuilder[Req, Resp]) BuildConcurrent(maxConcurrency int) *ConcurrentServerMessageBox[Req, Resp] {
	return NewConcurrentServerMessageBox(maxConcurrency, b.Build())
}
