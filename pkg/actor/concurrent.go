package actor

import (
	"context"
	"sync"
)

// ConcurrentServerMessageBox 并发处理请求的服务端消息盒
//
// 准入控制：在途任务数达到 maxConcurrency 时，Recv 先等待一个任务完成并把结果
// 路由给对应客户端，腾出名额后才接收新请求。低于上限时，接收新请求与任务完成相互竞争。
//
// 在途任务计数只由拥有此消息盒的 Actor 运行循环修改，不需要额外同步。
type ConcurrentServerMessageBox[Req, Resp any] struct {
	maxConcurrency int
	clients        *ServerMessageBox[Req, Resp]

	// pending 已登记但结果尚未被观察到的任务数
	pending   int
	completed chan TaskResult[Envelope[Resp]]
	inputDone bool

	abandoned   chan struct{}
	abandonOnce sync.Once

	onTaskFailure func(error)
}

// NewConcurrentServerMessageBox 创建并发服务端消息盒
// maxConcurrency 小于 1 时按 1 处理
func NewConcurrentServerMessageBox[Req, Resp any](
	maxConcurrency int,
	clients *ServerMessageBox[Req, Resp],
) *ConcurrentServerMessageBox[Req, Resp] {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &ConcurrentServerMessageBox[Req, Resp]{
		maxConcurrency: maxConcurrency,
		clients:        clients,
		completed:      make(chan TaskResult[Envelope[Resp]]),
		abandoned:      make(chan struct{}),
	}
}

// ConcurrentChannel 创建客户端视图与并发服务端消息盒（主要用于测试）
func ConcurrentChannel[Req, Resp any](
	name string,
	capacity int,
	maxConcurrency int,
) (*SimpleMessageBox[Envelope[Resp], Envelope[Req]], *ConcurrentServerMessageBox[Req, Resp]) {
	client, service := Channel[Envelope[Req], Envelope[Resp]](name, capacity)
	return client, NewConcurrentServerMessageBox(maxConcurrency, service)
}

// Recv 返回下一个请求
//
// 输入流结束（关闭信号或通道耗尽）后仍会等待并路由剩余在途任务，
// 没有在途任务时返回 false。ctx 取消时立即返回 false，在途任务保持不变；
// 此时若不再调用 Recv，拥有者必须调用 Abandon，否则转交任务结果的 goroutine 会一直阻塞。
func (b *ConcurrentServerMessageBox[Req, Resp]) Recv(ctx context.Context) (Envelope[Req], bool) {
	if !b.awaitIdleProcessor(ctx) {
		return Envelope[Req]{}, false
	}
	return b.nextRequest(ctx)
}

func (b *ConcurrentServerMessageBox[Req, Resp]) awaitIdleProcessor(ctx context.Context) bool {
	if b.pending < b.maxConcurrency {
		return true
	}
	select {
	case result := <-b.completed:
		b.sendResult(ctx, result)
		return true
	case <-ctx.Done():
		return false
	}
}

func (b *ConcurrentServerMessageBox[Req, Resp]) nextRequest(ctx context.Context) (Envelope[Req], bool) {
	var zero Envelope[Req]
	var inputs <-chan Envelope[Req]
	var signals <-chan RuntimeRequest
	if !b.inputDone {
		inputs, signals = b.clients.input.C(), b.clients.signals.C()
	}

	for {
		if inputs == nil && signals == nil {
			b.inputDone = true
			if b.pending == 0 {
				return zero, false
			}
		}

		select {
		case req, ok := <-inputs:
			if !ok {
				inputs = nil
				continue
			}
			return b.clients.deliver(req), true

		case sig, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			b.clients.LogInput(sig)
			inputs, signals = nil, nil

		case result := <-b.completed:
			b.sendResult(ctx, result)

		case <-ctx.Done():
			return zero, false
		}
	}
}

// Send 直接向客户端发送响应（不经过在途任务）
func (b *ConcurrentServerMessageBox[Req, Resp]) Send(ctx context.Context, msg Envelope[Resp]) error {
	return b.clients.Send(ctx, msg)
}

// SendResponseOnceDone 登记一个在途任务
// 任务由调用方启动，完成后其结果由 Recv 路由给客户端
func (b *ConcurrentServerMessageBox[Req, Resp]) SendResponseOnceDone(task *PendingTask[Envelope[Resp]]) {
	select {
	case <-b.abandoned:
		b.clients.logger.Warn("box abandoned, pending task ignored")
		return
	default:
	}

	b.pending++
	b.clients.stats.RecordTaskAdmitted(b.pending)
	go b.watch(task)
}

// watch 把任务结果转交给运行循环
func (b *ConcurrentServerMessageBox[Req, Resp]) watch(task *PendingTask[Envelope[Resp]]) {
	var result TaskResult[Envelope[Resp]]
	select {
	case r, ok := <-task.Done():
		if !ok {
			r = TaskResult[Envelope[Resp]]{Err: ErrTaskCancelled}
		}
		result = r
	case <-b.abandoned:
		return
	}

	select {
	case b.completed <- result:
	case <-b.abandoned:
	}
}

// sendResult 路由任务结果
//
// 失败的任务结果被丢弃，客户端收不到任何响应；
// 失败通过日志、TasksFailed 计数和 OnTaskFailure 回调暴露。
func (b *ConcurrentServerMessageBox[Req, Resp]) sendResult(ctx context.Context, result TaskResult[Envelope[Resp]]) {
	b.pending--
	if result.Err != nil {
		b.clients.stats.RecordTaskFailed(result.Err)
		b.clients.logger.Warn("pending task failed, response dropped", "error", result.Err)
		if b.onTaskFailure != nil {
			b.onTaskFailure(result.Err)
		}
		return
	}

	b.clients.stats.RecordTaskCompleted()
	if err := b.clients.Send(ctx, result.Value); err != nil {
		b.clients.logger.Warn("failed to route response", "client", result.Value.Client, "error", err)
	}
}

// OnTaskFailure 设置任务失败回调，在运行循环中调用
func (b *ConcurrentServerMessageBox[Req, Resp]) OnTaskFailure(fn func(error)) {
	b.onTaskFailure = fn
}

// PendingCount 返回在途任务数
func (b *ConcurrentServerMessageBox[Req, Resp]) PendingCount() int { return b.pending }

// MaxConcurrency 返回并发上限
func (b *ConcurrentServerMessageBox[Req, Resp]) MaxConcurrency() int { return b.maxConcurrency }

// Abandon 放弃所有在途任务的结果
// 任务本身不会被取消，其结果不再被路由
func (b *ConcurrentServerMessageBox[Req, Resp]) Abandon() {
	b.abandonOnce.Do(func() {
		close(b.abandoned)
	})
	b.pending = 0
}

// CloseOutput 关闭输出
func (b *ConcurrentServerMessageBox[Req, Resp]) CloseOutput() {
	b.clients.CloseOutput()
}

// Stats 获取统计快照
func (b *ConcurrentServerMessageBox[Req, Resp]) Stats() *BoxStats {
	return b.clients.Stats()
}

// Name 实现 MessageBox 接口
func (b *ConcurrentServerMessageBox[Req, Resp]) Name() string { return b.clients.Name() }

// TurnLoggingOn 实现 MessageBox 接口
func (b *ConcurrentServerMessageBox[Req, Resp]) TurnLoggingOn(on bool) { b.clients.TurnLoggingOn(on) }

// LoggingIsOn 实现 MessageBox 接口
func (b *ConcurrentServerMessageBox[Req, Resp]) LoggingIsOn() bool { return b.clients.LoggingIsOn() }

// LogInput 实现 MessageBox 接口
func (b *ConcurrentServerMessageBox[Req, Resp]) LogInput(msg any) { b.clients.LogInput(msg) }

// LogOutput 实现 MessageBox 接口
func (b *ConcurrentServerMessageBox[Req, Resp]) LogOutput(msg any) { b.clients.LogOutput(msg) }
