package actor

import (
	"context"
)

// ClientMessageBox 请求/响应服务的客户端消息盒
//
// 输入通道容量为 1：调用方一次只发出一个请求，
// 因此至多只有一个响应在等待，不需要自行关联请求与响应。
//
// 等待被 ctx 取消后，迟到的响应仍会送达；owed 记录这些响应，
// 下一次请求发送前先把它们取出丢弃。
type ClientMessageBox[Req, Resp any] struct {
	messages *SimpleMessageBox[Resp, Req]
	owed     int
}

// NewClientMessageBox 创建连接到 service 的客户端消息盒
func NewClientMessageBox[Req, Resp any](name string, service ServiceProvider[Req, Resp]) *ClientMessageBox[Req, Resp] {
	b := NewMessageBoxBuilder[Resp, Req](name, 1)
	b.SetOutput(service.ConnectClient(b.GetSender()))
	return &ClientMessageBox[Req, Resp]{messages: b.Build()}
}

// AwaitResponse 发送请求并等待响应
// 响应到达前通道关闭（例如服务端已退出）时返回 ErrReceive；
// ctx 取消时返回 ctx 的错误，该请求的响应在下一次调用时被丢弃
func (c *ClientMessageBox[Req, Resp]) AwaitResponse(ctx context.Context, request Req) (Resp, error) {
	var zero Resp
	if err := c.discardOwed(ctx); err != nil {
		return zero, err
	}
	if err := c.messages.Send(ctx, request); err != nil {
		return zero, err
	}

	resp, ok := c.messages.Recv(ctx)
	if !ok {
		if err := ctx.Err(); err != nil {
			c.owed++
			return zero, err
		}
		return zero, receiveError("no response from " + c.Name())
	}
	return resp, nil
}

// discardOwed 取出并丢弃之前被取消的请求的响应
func (c *ClientMessageBox[Req, Resp]) discardOwed(ctx context.Context) error {
	for c.owed > 0 {
		stale, ok := c.messages.Recv(ctx)
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.owed = 0
			return receiveError("no response from " + c.Name())
		}
		c.owed--
		c.messages.logger.Debug("stale response discarded", "message", stale)
	}
	return nil
}

// Close 关闭请求通道
func (c *ClientMessageBox[Req, Resp]) Close() {
	c.messages.CloseOutput()
}

// Name 实现 MessageBox 接口
func (c *ClientMessageBox[Req, Resp]) Name() string { return c.messages.Name() }

// TurnLoggingOn 实现 MessageBox 接口
func (c *ClientMessageBox[Req, Resp]) TurnLoggingOn(on bool) { c.messages.TurnLoggingOn(on) }

// LoggingIsOn 实现 MessageBox 接口
func (c *ClientMessageBox[Req, Resp]) LoggingIsOn() bool { return c.messages.LoggingIsOn() }

// LogInput 实现 MessageBox 接口
func (c *ClientMessageBox[Req, Resp]) LogInput(msg any) { c.messages.LogInput(msg) }

// LogOutput 实现 MessageBox 接口
func (c *ClientMessageBox[Req, Resp]) LogOutput(msg any) { c.messages.LogOutput(msg) }
