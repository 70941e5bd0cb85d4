package actor

import (
	"log/slog"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[slog.Logger]

// SetLogger 设置包级日志器，之后创建的消息盒使用它
// 未设置时使用 slog.Default()
func SetLogger(l *slog.Logger) {
	defaultLogger.Store(l)
}

// Logger 返回包级日志器
func Logger() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// MessageBox 所有消息盒共有的契约
//
// 名字是日志命名空间，在消息盒生命周期内不变；
// LogInput 在交付输入前调用，LogOutput 在发送输出前调用。
type MessageBox interface {
	// Name 返回消息盒名称
	Name() string
	// TurnLoggingOn 打开或关闭输入输出日志
	TurnLoggingOn(on bool)
	// LoggingIsOn 日志是否打开
	LoggingIsOn() bool
	// LogInput 记录刚收到、尚未处理的输入
	LogInput(msg any)
	// LogOutput 记录即将发送的输出
	LogOutput(msg any)
}

// boxLog 消息盒的日志钩子，由各消息盒嵌入
type boxLog struct {
	name   string
	on     bool
	logger *slog.Logger
}

func newBoxLog(name string) boxLog {
	return boxLog{
		name:   name,
		on:     true,
		logger: Logger().With("box", name),
	}
}

// Name 实现 MessageBox 接口
func (l *boxLog) Name() string { return l.name }

// TurnLoggingOn 实现 MessageBox 接口
func (l *boxLog) TurnLoggingOn(on bool) { l.on = on }

// LoggingIsOn 实现 MessageBox 接口
func (l *boxLog) LoggingIsOn() bool { return l.on }

// LogInput 实现 MessageBox 接口
func (l *boxLog) LogInput(msg any) {
	if l.on {
		l.logger.Info("recv", messageAttrs(msg)...)
	}
}

// LogOutput 实现 MessageBox 接口
func (l *boxLog) LogOutput(msg any) {
	if l.on {
		l.logger.Debug("send", messageAttrs(msg)...)
	}
}

func messageAttrs(msg any) []any {
	if k, ok := msg.(Kinded); ok {
		return []any{"kind", k.Kind(), "message", msg}
	}
	return []any{"message", msg}
}
