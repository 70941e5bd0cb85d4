package actor

import (
	"sync"
	"sync/atomic"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// 消息盒统计信息
// ═══════════════════════════════════════════════════════════════════════════

// BoxStats 消息盒运行时统计信息
type BoxStats struct {
	// 消息计数
	MessagesReceived int64 // 交付给 Actor 的输入数
	MessagesSent     int64 // 成功发送的输出数
	Errors           int64 // 发送错误数

	// 在途任务
	TasksAdmitted  int64 // 登记的任务总数
	TasksCompleted int64 // 成功完成并路由的任务数
	TasksFailed    int64 // 失败被丢弃的任务数
	MaxInFlight    int64 // 观察到的最大在途任务数

	// 时间戳
	StartedAt     time.Time // 创建时间
	LastMessageAt time.Time // 最后一次收发时间

	// 错误信息
	LastError error // 最后一个错误
}

// StatsCollector 使用原子操作的统计收集器
// 计数在 Actor 运行循环中更新，快照可以在任意 goroutine 读取
type StatsCollector struct {
	messagesReceived atomic.Int64
	messagesSent     atomic.Int64
	errors           atomic.Int64
	tasksAdmitted    atomic.Int64
	tasksCompleted   atomic.Int64
	tasksFailed      atomic.Int64
	maxInFlight      atomic.Int64

	// 非原子字段，需要锁保护
	mu            sync.RWMutex
	startedAt     time.Time
	lastMessageAt time.Time
	lastError     error
}

// NewStatsCollector 创建统计收集器
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{
		startedAt: time.Now(),
	}
}

// RecordReceived 记录交付的输入
func (c *StatsCollector) RecordReceived() {
	c.messagesReceived.Add(1)
	c.touch()
}

// RecordSent 记录发送的输出
func (c *StatsCollector) RecordSent() {
	c.messagesSent.Add(1)
	c.touch()
}

// RecordError 记录错误
func (c *StatsCollector) RecordError(err error) {
	c.errors.Add(1)
	c.mu.Lock()
	c.lastError = err
	c.mu.Unlock()
}

// RecordTaskAdmitted 记录登记的任务，inFlight 为登记后的在途数
func (c *StatsCollector) RecordTaskAdmitted(inFlight int) {
	c.tasksAdmitted.Add(1)
	for {
		cur := c.maxInFlight.Load()
		if int64(inFlight) <= cur || c.maxInFlight.CompareAndSwap(cur, int64(inFlight)) {
			return
		}
	}
}

// RecordTaskCompleted 记录成功完成的任务
func (c *StatsCollector) RecordTaskCompleted() {
	c.tasksCompleted.Add(1)
}

// RecordTaskFailed 记录失败的任务
func (c *StatsCollector) RecordTaskFailed(err error) {
	c.tasksFailed.Add(1)
	c.mu.Lock()
	c.lastError = err
	c.mu.Unlock()
}

func (c *StatsCollector) touch() {
	c.mu.Lock()
	c.lastMessageAt = time.Now()
	c.mu.Unlock()
}

// Stats 获取统计快照
func (c *StatsCollector) Stats() *BoxStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &BoxStats{
		MessagesReceived: c.messagesReceived.Load(),
		MessagesSent:     c.messagesSent.Load(),
		Errors:           c.errors.Load(),
		TasksAdmitted:    c.tasksAdmitted.Load(),
		TasksCompleted:   c.tasksCompleted.Load(),
		TasksFailed:      c.tasksFailed.Load(),
		MaxInFlight:      c.maxInFlight.Load(),
		StartedAt:        c.startedAt,
		LastMessageAt:    c.lastMessageAt,
		LastError:        c.lastError,
	}
}
