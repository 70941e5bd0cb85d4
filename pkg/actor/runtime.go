package actor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Runtime Actor 运行时
// 管理 Actor 的运行循环、关闭信号和监督
type Runtime struct {
	// 基本信息
	name string

	// Actor 注册表
	actors   map[string]*actorCell
	actorsMu sync.RWMutex

	// 生命周期控制
	ctx       context.Context
	cancel    context.CancelFunc
	group     errgroup.Group
	isRunning atomic.Bool

	// 配置
	config *RuntimeConfig

	// 日志
	logger *slog.Logger
}

// actorCell Actor 单元，包含 Actor 及其运行时状态
type actorCell struct {
	actor      Actor
	signals    Sender[RuntimeRequest]
	supervisor SupervisorStrategy

	// 状态
	state    atomic.Int32
	restarts atomic.Int32
}

type actorState int32

const (
	actorStateIdle actorState = iota
	actorStateRunning
	actorStateRestarting
	actorStateStopped
)

// SpawnOption Actor 启动选项
type SpawnOption func(*actorCell)

// WithSupervisor 设置监督策略
func WithSupervisor(strategy SupervisorStrategy) SpawnOption {
	return func(c *actorCell) {
		c.supervisor = strategy
	}
}

// NewRuntime 创建运行时
func NewRuntime(name string, config *RuntimeConfig) *Runtime {
	if config == nil {
		config = DefaultRuntimeConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runtime{
		name:   name,
		actors: make(map[string]*actorCell),
		ctx:    ctx,
		cancel: cancel,
		config: config,
		logger: logger.With("runtime", name),
	}
	r.isRunning.Store(true)

	r.logger.Info("actor runtime started")
	return r
}

// Name 返回运行时名称
func (r *Runtime) Name() string {
	return r.name
}

// Config 返回运行时配置
func (r *Runtime) Config() *RuntimeConfig {
	return r.config
}

// Spawn 启动 Actor
// signals 连接到该 Actor 消息盒的控制通道（构建器 Build 之前通过 GetSignalSender 取得），
// 关闭时通过它发送 RuntimeRequestShutdown；可以为 nil
func (r *Runtime) Spawn(a Actor, signals Sender[RuntimeRequest], opts ...SpawnOption) error {
	if !r.isRunning.Load() {
		return ErrRuntimeStopped
	}

	cell := &actorCell{actor: a, signals: signals}
	for _, opt := range opts {
		opt(cell)
	}
	if cell.supervisor == nil {
		cell.supervisor = DefaultSupervisorStrategy()
	}

	r.actorsMu.Lock()
	if _, exists := r.actors[a.Name()]; exists {
		r.actorsMu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateActor, a.Name())
	}
	r.actors[a.Name()] = cell
	r.actorsMu.Unlock()

	r.group.Go(func() error {
		return r.actorLoop(cell)
	})

	r.logger.Debug("spawned actor", "actor", a.Name())
	return nil
}

// minRetryDelay 重新运行失败 Actor 前的最短等待
const minRetryDelay = 10 * time.Millisecond

// actorLoop 运行 Actor 直到正常返回或监督策略决定停止
func (r *Runtime) actorLoop(cell *actorCell) error {
	name := cell.actor.Name()
	defer cell.state.Store(int32(actorStateStopped))

	for {
		cell.state.Store(int32(actorStateRunning))
		err := r.runActor(cell)
		if err == nil {
			r.logger.Info("actor stopped", "actor", name)
			return nil
		}
		if r.ctx.Err() != nil {
			r.logger.Warn("actor stopped after runtime cancellation", "actor", name, "error", err)
			return err
		}

		r.logger.Error("actor failed", "actor", name, "error", err)

		directive, delay := DirectiveStop, time.Duration(0)
		switch d := cell.supervisor.HandleFailure(name, err).(type) {
		case DirectiveWithDelay:
			directive, delay = d.Directive, d.Delay
		case Directive:
			directive = d
		}

		switch directive {
		case DirectiveResume:
			if !r.sleep(max(delay, minRetryDelay)) {
				return err
			}

		case DirectiveRestart:
			cell.state.Store(int32(actorStateRestarting))
			restarts := cell.restarts.Add(1)
			if !r.sleep(max(delay, minRetryDelay)) {
				return err
			}
			r.logger.Info("actor restarted", "actor", name, "restarts", restarts)

		case DirectiveEscalate:
			r.logger.Error("actor failure escalated, shutting down runtime", "actor", name)
			go r.signalAll(context.Background())
			return err

		default:
			return err
		}
	}
}

// runActor 运行一次 Actor，panic 转换为 RuntimeError
func (r *Runtime) runActor(cell *actorCell) (err error) {
	name := cell.actor.Name()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic in actor",
				"actor", name,
				"error", p,
				"stack", string(debug.Stack()))
			err = &RuntimeError{Actor: name, Err: fmt.Errorf("%w: %v", ErrActorPanicked, p)}
		}
	}()

	if err := cell.actor.Run(r.ctx); err != nil {
		return &RuntimeError{Actor: name, Err: err}
	}
	return nil
}

func (r *Runtime) sleep(d time.Duration) bool {
	if d <= 0 {
		return r.ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// signalAll 向所有 Actor 发送关闭信号
func (r *Runtime) signalAll(ctx context.Context) {
	r.isRunning.Store(false)

	r.actorsMu.RLock()
	cells := make([]*actorCell, 0, len(r.actors))
	for _, cell := range r.actors {
		cells = append(cells, cell)
	}
	r.actorsMu.RUnlock()

	for _, cell := range cells {
		if cell.signals == nil || actorState(cell.state.Load()) == actorStateStopped {
			continue
		}
		if err := cell.signals.Send(ctx, RuntimeRequestShutdown); err != nil {
			r.logger.Debug("shutdown signal not delivered", "actor", cell.actor.Name(), "error", err)
		}
	}
}

// Shutdown 向所有 Actor 发送关闭信号并等待其停止
// 超过 ShutdownTimeout 或 ctx 取消时，取消所有 Actor 的 context 并返回
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.logger.Info("actor runtime shutting down")

	timeout := r.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultRuntimeConfig().ShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.signalAll(ctx)

	done := make(chan error, 1)
	go func() {
		done <- r.group.Wait()
	}()

	select {
	case err := <-done:
		r.cancel()
		r.logger.Info("actor runtime shutdown complete")
		return err
	case <-ctx.Done():
		r.cancel()
		r.logger.Warn("actor runtime shutdown timeout, cancelling actors")
		if ctx.Err() == context.DeadlineExceeded {
			return ErrShutdownTimeout
		}
		return ctx.Err()
	}
}

// Wait 等待所有 Actor 停止，返回第一个失败
func (r *Runtime) Wait() error {
	err := r.group.Wait()
	r.isRunning.Store(false)
	return err
}

// Actors 列出所有 Actor 名称
func (r *Runtime) Actors() []string {
	r.actorsMu.RLock()
	defer r.actorsMu.RUnlock()

	names := make([]string, 0, len(r.actors))
	for name := range r.actors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Restarts 返回 Actor 的重启次数
func (r *Runtime) Restarts(name string) int {
	r.actorsMu.RLock()
	defer r.actorsMu.RUnlock()

	if cell, ok := r.actors[name]; ok {
		return int(cell.restarts.Load())
	}
	return 0
}

// Count 返回 Actor 数量
func (r *Runtime) Count() int {
	r.actorsMu.RLock()
	defer r.actorsMu.RUnlock()
	return len(r.actors)
}

// IsRunning 检查运行时是否接受新的 Actor
func (r *Runtime) IsRunning() bool {
	return r.isRunning.Load()
}
