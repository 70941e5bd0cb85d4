package actor

import (
	"context"
	"errors"
)

// ═══════════════════════════════════════════════════════════════════════════
// 错误处理工具
// ═══════════════════════════════════════════════════════════════════════════

// IsContextError 检查错误是否为 context 相关错误
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IgnoreContextError 如果是 context 错误则返回 nil
// Actor 在运行时取消后退出时常用
func IgnoreContextError(err error) error {
	if IsContextError(err) {
		return nil
	}
	return err
}

// IsChannelError 检查错误是否为通道错误
func IsChannelError(err error) bool {
	var ce *ChannelError
	return errors.As(err, &ce)
}

// ═══════════════════════════════════════════════════════════════════════════
// 通道工具函数
// ═══════════════════════════════════════════════════════════════════════════

// Forward 把 from 中的消息逐条转发给 to，直到 from 结束或 ctx 取消
// 返回转发的消息数；发送失败时停止并返回错误
func Forward[M any](ctx context.Context, from *Receiver[M], to Sender[M]) (int, error) {
	n := 0
	for {
		msg, ok := from.Recv(ctx)
		if !ok {
			return n, IgnoreContextError(ctx.Err())
		}
		if err := to.Send(ctx, msg); err != nil {
			return n, err
		}
		n++
	}
}
