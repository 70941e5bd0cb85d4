package actor

import (
	"context"
	"sync"
	"sync/atomic"
)

// Sender 多态发送接口
// 通道发送端、类型适配器、日志发送端都实现此接口
type Sender[M any] interface {
	// Send 发送消息，通道满时挂起；接收端已丢弃或通道已关闭时返回 ErrSend
	Send(ctx context.Context, msg M) error
	// CloseSender 关闭此发送端，幂等
	CloseSender()
}

// channel 有界 FIFO 通道
//
// data 只在最后一个发送端关闭时关闭；关闭前先关闭 closing，
// 唤醒阻塞的发送者，再在写锁下关闭 data，因此不会出现向已关闭 channel 写入的 panic。
type channel[M any] struct {
	data    chan M
	closing chan struct{}
	dropped chan struct{}

	// mu 读锁由发送者持有，写锁只用于关闭 data
	mu sync.RWMutex

	refMu   sync.Mutex
	senders int
	ended   bool

	closeOnce sync.Once
	dropOnce  sync.Once
}

// NewChannel 创建容量为 capacity 的通道
// 容量小于 1 时按 1 处理
func NewChannel[M any](capacity int) (*ChanSender[M], *Receiver[M]) {
	if capacity < 1 {
		capacity = 1
	}
	c := &channel[M]{
		data:    make(chan M, capacity),
		closing: make(chan struct{}),
		dropped: make(chan struct{}),
	}
	return c.newSender(), &Receiver[M]{ch: c}
}

func (c *channel[M]) newSender() *ChanSender[M] {
	s := &ChanSender[M]{ch: c}

	c.refMu.Lock()
	defer c.refMu.Unlock()

	if c.ended {
		s.closed.Store(true)
		return s
	}
	c.senders++
	return s
}

func (c *channel[M]) release() {
	c.refMu.Lock()
	c.senders--
	last := c.senders == 0
	if last {
		c.ended = true
	}
	c.refMu.Unlock()

	if last {
		c.close()
	}
}

func (c *channel[M]) close() {
	c.closeOnce.Do(func() {
		close(c.closing)
		c.mu.Lock()
		close(c.data)
		c.mu.Unlock()
	})
}

func (c *channel[M]) send(ctx context.Context, msg M) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	select {
	case <-c.closing:
		return sendError("channel closed")
	case <-c.dropped:
		return sendError("receiver dropped")
	default:
	}

	select {
	case c.data <- msg:
		return nil
	case <-c.closing:
		return sendError("channel closed")
	case <-c.dropped:
		return sendError("receiver dropped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 发送端
// ═══════════════════════════════════════════════════════════════════════════

// ChanSender 通道发送端
//
// 同一通道可以有多个发送端（Clone），所有发送端都关闭后，
// 接收端在取完剩余消息后得到流结束。
type ChanSender[M any] struct {
	ch     *channel[M]
	closed atomic.Bool
}

// Send 实现 Sender 接口
func (s *ChanSender[M]) Send(ctx context.Context, msg M) error {
	if s.closed.Load() {
		return sendError("sender closed")
	}
	return s.ch.send(ctx, msg)
}

// Clone 创建指向同一通道的新发送端
func (s *ChanSender[M]) Clone() *ChanSender[M] {
	return s.ch.newSender()
}

// CloseSender 实现 Sender 接口
func (s *ChanSender[M]) CloseSender() {
	if s.closed.CompareAndSwap(false, true) {
		s.ch.release()
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 接收端
// ═══════════════════════════════════════════════════════════════════════════

// Receiver 通道接收端
type Receiver[M any] struct {
	ch *channel[M]
}

// C 返回底层 channel，用于 select
// 所有发送端关闭并取完消息后，读取返回 ok == false
func (r *Receiver[M]) C() <-chan M {
	if r == nil {
		return nil
	}
	return r.ch.data
}

// Recv 接收下一条消息
// 通道结束或 ctx 取消时返回 false
func (r *Receiver[M]) Recv(ctx context.Context) (M, bool) {
	var zero M
	select {
	case msg, ok := <-r.C():
		return msg, ok
	case <-ctx.Done():
		return zero, false
	}
}

// Close 丢弃接收端，之后所有发送都返回 ErrSend
func (r *Receiver[M]) Close() {
	r.ch.dropOnce.Do(func() {
		close(r.ch.dropped)
	})
}

// Len 返回队列中的消息数
func (r *Receiver[M]) Len() int { return len(r.ch.data) }

// Cap 返回通道容量
func (r *Receiver[M]) Cap() int { return cap(r.ch.data) }
