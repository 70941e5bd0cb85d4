package actor

import (
	"fmt"
	"sync"
)

// TaskResult 在途任务的结果
type TaskResult[R any] struct {
	Value R
	Err   error
}

// PendingTask 在途任务句柄
//
// 句柄只完成一次：Complete、Fail 或 Cancel 中先调用者生效。
// 消息盒只持有句柄，不负责创建或调度任务本身。
type PendingTask[R any] struct {
	done chan TaskResult[R]
	once sync.Once
}

// NewPendingTask 创建未完成的任务句柄
func NewPendingTask[R any]() *PendingTask[R] {
	return &PendingTask[R]{done: make(chan TaskResult[R], 1)}
}

// Go 在新 goroutine 中运行 fn 并返回其句柄
// fn 返回错误或 panic 时句柄以失败完成
func Go[R any](fn func() (R, error)) *PendingTask[R] {
	t := NewPendingTask[R]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.Fail(fmt.Errorf("%w: %v", ErrTaskPanicked, r))
			}
		}()

		v, err := fn()
		if err != nil {
			t.Fail(err)
			return
		}
		t.Complete(v)
	}()
	return t
}

// Complete 以结果完成任务
func (t *PendingTask[R]) Complete(v R) {
	t.resolve(TaskResult[R]{Value: v})
}

// Fail 以错误完成任务
func (t *PendingTask[R]) Fail(err error) {
	if err == nil {
		err = ErrTaskFailed
	}
	t.resolve(TaskResult[R]{Err: err})
}

// Cancel 不产生结果地结束任务
func (t *PendingTask[R]) Cancel() {
	t.once.Do(func() {
		close(t.done)
	})
}

// Done 返回完成通知通道
// 任务完成时通道先产出一个结果再关闭；取消时直接关闭
func (t *PendingTask[R]) Done() <-chan TaskResult[R] {
	return t.done
}

func (t *PendingTask[R]) resolve(r TaskResult[R]) {
	t.once.Do(func() {
		t.done <- r
		close(t.done)
	})
}
