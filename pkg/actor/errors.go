package actor

import (
	"errors"
	"fmt"
)

var (
	// ErrSend 发送失败：下游接收端已丢弃，或通道已关闭
	ErrSend = errors.New("send error")
	// ErrReceive 接收失败：等待的响应到达前通道已关闭
	ErrReceive = errors.New("receive error")

	// ErrTaskFailed 在途任务失败
	ErrTaskFailed = errors.New("pending task failed")
	// ErrTaskCancelled 在途任务句柄未产生结果即被取消
	ErrTaskCancelled = errors.New("pending task cancelled")
	// ErrTaskPanicked 在途任务 panic
	ErrTaskPanicked = errors.New("pending task panicked")

	// ErrActorPanicked Actor 运行循环 panic
	ErrActorPanicked = errors.New("actor panicked")
	// ErrRuntimeStopped 运行时已停止，不能再启动 Actor
	ErrRuntimeStopped = errors.New("runtime stopped")
	// ErrDuplicateActor 同名 Actor 已存在
	ErrDuplicateActor = errors.New("actor already exists")
	// ErrShutdownTimeout 等待 Actor 停止超时
	ErrShutdownTimeout = errors.New("shutdown timeout")
)

// ChannelError 通道错误
// Kind 为 ErrSend 或 ErrReceive，可用 errors.Is 判断
type ChannelError struct {
	Kind  error
	Cause string
}

// Error 实现 error 接口
func (e *ChannelError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Cause)
}

// Unwrap 返回错误类别
func (e *ChannelError) Unwrap() error { return e.Kind }

func sendError(cause string) error {
	return &ChannelError{Kind: ErrSend, Cause: cause}
}

func receiveError(cause string) error {
	return &ChannelError{Kind: ErrReceive, Cause: cause}
}

// RuntimeError Actor 运行失败
type RuntimeError struct {
	Actor string
	Err   error
}

// Error 实现 error 接口
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("actor %s: %v", e.Actor, e.Err)
}

// Unwrap 返回底层错误
func (e *RuntimeError) Unwrap() error { return e.Err }
