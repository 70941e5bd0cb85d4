package actor

import (
	"errors"
	"sync"
	"time"
)

// Directive 监督指令
type Directive int

const (
	// DirectiveResume 短暂等待后重新运行 Actor，不计入重启次数
	DirectiveResume Directive = iota
	// DirectiveRestart 重新运行 Actor，计入重启次数
	DirectiveRestart
	// DirectiveStop 停止 Actor，错误由 Runtime.Wait 返回
	DirectiveStop
	// DirectiveEscalate 停止 Actor 并关闭整个运行时
	DirectiveEscalate
)

var directiveNames = [...]string{
	DirectiveResume:   "Resume",
	DirectiveRestart:  "Restart",
	DirectiveStop:     "Stop",
	DirectiveEscalate: "Escalate",
}

// String 返回指令名称
func (d Directive) String() string {
	if d < 0 || int(d) >= len(directiveNames) {
		return "Unknown"
	}
	return directiveNames[d]
}

// DirectiveWithDelay 带延迟的指令
type DirectiveWithDelay struct {
	Directive Directive
	Delay     time.Duration
}

// SupervisorStrategy 监督策略接口
type SupervisorStrategy interface {
	// HandleFailure 决定 Actor 的 Run 返回错误后如何处理
	// 返回 Directive 或 DirectiveWithDelay
	HandleFailure(actor string, err error) any
}

// Decider 把错误映射为指令
type Decider func(err error) Directive

// RestartingDecider 总是重启
func RestartingDecider(error) Directive { return DirectiveRestart }

// ResumingDecider 总是恢复
func ResumingDecider(error) Directive { return DirectiveResume }

// StoppingDecider 总是停止
func StoppingDecider(error) Directive { return DirectiveStop }

// EscalatingDecider 总是上报
func EscalatingDecider(error) Directive { return DirectiveEscalate }

// ═══════════════════════════════════════════════════════════════════════════
// 窗口限额
// ═══════════════════════════════════════════════════════════════════════════

// OneForOneStrategy 只处理失败的那个 Actor
// Decider 判定为重启时，最近 within 时间内的重启次数达到上限则改为停止
type OneForOneStrategy struct {
	decide Decider
	limit  int
	within time.Duration

	mu       sync.Mutex
	restarts []time.Time // 按时间递增
}

// NewOneForOneStrategy 创建一对一策略，decider 为 nil 时总是重启
func NewOneForOneStrategy(maxRestarts int, within time.Duration, decider Decider) *OneForOneStrategy {
	if decider == nil {
		decider = RestartingDecider
	}
	return &OneForOneStrategy{decide: decider, limit: maxRestarts, within: within}
}

// HandleFailure 实现 SupervisorStrategy
func (s *OneForOneStrategy) HandleFailure(_ string, err error) any {
	d := s.decide(err)
	if d != DirectiveRestart {
		return d
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.forgetBefore(now.Add(-s.within))
	if len(s.restarts) >= s.limit {
		return DirectiveStop
	}
	s.restarts = append(s.restarts, now)
	return DirectiveRestart
}

// forgetBefore 丢弃早于 cutoff 的重启记录
func (s *OneForOneStrategy) forgetBefore(cutoff time.Time) {
	n := 0
	for n < len(s.restarts) && !s.restarts[n].After(cutoff) {
		n++
	}
	s.restarts = s.restarts[n:]
}

// ═══════════════════════════════════════════════════════════════════════════
// 指数退避
// ═══════════════════════════════════════════════════════════════════════════

// ExponentialBackoffStrategy 每次重启的等待时间翻倍，不超过 maxDelay
// 重启 maxRestarts 次后停止，Reset 重新计数
type ExponentialBackoffStrategy struct {
	decide  Decider
	base    time.Duration
	ceiling time.Duration
	limit   int

	mu      sync.Mutex
	attempt int
}

// NewExponentialBackoffStrategy 创建指数退避策略，decider 为 nil 时总是重启
func NewExponentialBackoffStrategy(initialDelay, maxDelay time.Duration, maxRestarts int, decider Decider) *ExponentialBackoffStrategy {
	if decider == nil {
		decider = RestartingDecider
	}
	return &ExponentialBackoffStrategy{
		decide:  decider,
		base:    initialDelay,
		ceiling: maxDelay,
		limit:   maxRestarts,
	}
}

// HandleFailure 实现 SupervisorStrategy
func (s *ExponentialBackoffStrategy) HandleFailure(_ string, err error) any {
	d := s.decide(err)
	if d != DirectiveRestart {
		return d
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempt >= s.limit {
		return DirectiveStop
	}
	delay := s.delayFor(s.attempt)
	s.attempt++
	return DirectiveWithDelay{Directive: DirectiveRestart, Delay: delay}
}

// delayFor 第 attempt 次重启（从 0 开始）的等待时间
func (s *ExponentialBackoffStrategy) delayFor(attempt int) time.Duration {
	delay := s.base
	for i := 0; i < attempt && delay < s.ceiling; i++ {
		delay *= 2
	}
	return min(delay, s.ceiling)
}

// Reset 清零重启计数
func (s *ExponentialBackoffStrategy) Reset() {
	s.mu.Lock()
	s.attempt = 0
	s.mu.Unlock()
}

// ═══════════════════════════════════════════════════════════════════════════
// 预设与组合
// ═══════════════════════════════════════════════════════════════════════════

// DefaultSupervisorStrategy 任何失败都停止 Actor
func DefaultSupervisorStrategy() SupervisorStrategy {
	return NewOneForOneStrategy(0, time.Second, StoppingDecider)
}

// LenientSupervisorStrategy 1 分钟内最多重启 3 次
func LenientSupervisorStrategy() SupervisorStrategy {
	return NewOneForOneStrategy(3, time.Minute, RestartingDecider)
}

// CompositeStrategy 按错误链（errors.Is）挑选策略，都不匹配时使用 fallback
type CompositeStrategy struct {
	routes   []compositeRoute
	fallback SupervisorStrategy
}

type compositeRoute struct {
	target   error
	strategy SupervisorStrategy
}

// NewCompositeStrategy 创建组合策略，fallback 为 nil 时使用默认策略
func NewCompositeStrategy(fallback SupervisorStrategy) *CompositeStrategy {
	if fallback == nil {
		fallback = DefaultSupervisorStrategy()
	}
	return &CompositeStrategy{fallback: fallback}
}

// RegisterStrategy 为 target 错误注册策略，先注册者优先
func (s *CompositeStrategy) RegisterStrategy(target error, strategy SupervisorStrategy) {
	s.routes = append(s.routes, compositeRoute{target: target, strategy: strategy})
}

// HandleFailure 实现 SupervisorStrategy
func (s *CompositeStrategy) HandleFailure(actor string, err error) any {
	for _, r := range s.routes {
		if errors.Is(err, r.target) {
			return r.strategy.HandleFailure(actor, err)
		}
	}
	return s.fallback.HandleFailure(actor, err)
}
