package actor

import (
	"context"
)

// SimpleMessageBox 基础消息盒
//
// 一个输入接收端、一个控制信号接收端、一个输出发送端。
// 控制通道与输入通道一起被 select，二者同时就绪时谁先被观察到不做保证，
// 因此关闭信号是"尽快"而非"立即"停止。
type SimpleMessageBox[In, Out any] struct {
	boxLog

	input   *Receiver[In]
	signals *Receiver[RuntimeRequest]
	output  Sender[Out]

	stats *StatsCollector
}

// NewSimpleMessageBox 创建基础消息盒
// signals 可以为 nil，表示没有控制通道
func NewSimpleMessageBox[In, Out any](
	name string,
	input *Receiver[In],
	signals *Receiver[RuntimeRequest],
	output Sender[Out],
) *SimpleMessageBox[In, Out] {
	if output == nil {
		output = NullSender[Out]{}
	}
	return &SimpleMessageBox[In, Out]{
		boxLog:  newBoxLog(name),
		input:   input,
		signals: signals,
		output:  output,
		stats:   NewStatsCollector(),
	}
}

// Recv 等待下一条输入或控制信号，取先就绪者
//
// 收到任何控制信号时返回 false（流结束）；
// 输入通道与控制通道都已关闭时返回 false；
// ctx 取消时返回 false。
func (b *SimpleMessageBox[In, Out]) Recv(ctx context.Context) (In, bool) {
	var zero In
	inputs, signals := b.input.C(), b.signals.C()

	for inputs != nil || signals != nil {
		select {
		case msg, ok := <-inputs:
			if !ok {
				inputs = nil
				continue
			}
			return b.deliver(msg), true

		case req, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			b.LogInput(req)
			return zero, false

		case <-ctx.Done():
			return zero, false
		}
	}
	return zero, false
}

// RecvSignal 只等待控制信号
// 控制通道关闭或 ctx 取消时返回 false
func (b *SimpleMessageBox[In, Out]) RecvSignal(ctx context.Context) (RuntimeRequest, bool) {
	if b.signals == nil {
		return 0, false
	}
	req, ok := b.signals.Recv(ctx)
	if ok {
		b.LogInput(req)
	}
	return req, ok
}

// Send 记录日志后把消息转发给输出发送端
func (b *SimpleMessageBox[In, Out]) Send(ctx context.Context, msg Out) error {
	b.LogOutput(msg)
	if err := b.output.Send(ctx, msg); err != nil {
		b.stats.RecordError(err)
		return err
	}
	b.stats.RecordSent()
	return nil
}

// CloseOutput 关闭输出，告知下游不会再有消息，幂等
func (b *SimpleMessageBox[In, Out]) CloseOutput() {
	b.output.CloseSender()
}

// Stats 获取统计快照
func (b *SimpleMessageBox[In, Out]) Stats() *BoxStats {
	return b.stats.Stats()
}

func (b *SimpleMessageBox[In, Out]) deliver(msg In) In {
	b.LogInput(msg)
	b.stats.RecordReceived()
	return msg
}

// Channel 创建一对相互连接的消息盒（主要用于测试）
//
//   - 第一个消息盒用于驱动和观察第二个消息盒
//   - 第一个发出的消息由第二个接收，反之亦然
//   - 两者名称由同一个逻辑名派生：<name>-Client 与 <name>-Service
func Channel[In, Out any](name string, capacity int) (*SimpleMessageBox[Out, In], *SimpleMessageBox[In, Out]) {
	client := NewMessageBoxBuilder[Out, In](name+"-Client", capacity)
	service := NewMessageBoxBuilder[In, Out](name+"-Service", capacity)
	ConnectWith(service, client)
	return client.Build(), service.Build()
}

// ServerMessageBox 请求/响应服务端消息盒
// 每条输入输出都携带 ClientID，一对通道即可服务任意多个逻辑客户端
type ServerMessageBox[Req, Resp any] = SimpleMessageBox[Envelope[Req], Envelope[Resp]]
