package actor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============== 测试辅助 ==============

// syncBuffer 并发安全的日志缓冲区
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureLogs 把包级日志器替换为写入缓冲区的文本日志器
// 必须在创建消息盒之前调用
func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()

	prev := defaultLogger.Load()
	buf := &syncBuffer{}
	SetLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { defaultLogger.Store(prev) })
	return buf
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ============== 测试消息类型 ==============

type pingMessage struct {
	Seq int
}

func (p pingMessage) Kind() string { return "ping" }

// ============== 错误处理工具 ==============

func TestIsContextError(t *testing.T) {
	assert.True(t, IsContextError(context.Canceled))
	assert.True(t, IsContextError(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.False(t, IsContextError(ErrSend))

	assert.NoError(t, IgnoreContextError(context.Canceled))
	assert.ErrorIs(t, IgnoreContextError(ErrSend), ErrSend)
}

func TestIsChannelError(t *testing.T) {
	tx, rx := NewChannel[int](1)
	rx.Close()

	err := tx.Send(context.Background(), 1)
	assert.True(t, IsChannelError(err))
	assert.False(t, IsChannelError(context.Canceled))
}

func TestForward(t *testing.T) {
	ctx := testContext(t)
	srcTx, srcRx := NewChannel[int](4)
	dstTx, dstRx := NewChannel[int](4)

	for i := 1; i <= 3; i++ {
		require.NoError(t, srcTx.Send(ctx, i))
	}
	srcTx.CloseSender()

	n, err := Forward(ctx, srcRx, Sender[int](dstTx))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, dstRx.Len())

	v, ok := dstRx.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestForward_StopsOnSendError(t *testing.T) {
	ctx := testContext(t)
	srcTx, srcRx := NewChannel[int](4)
	dstTx, dstRx := NewChannel[int](4)
	dstRx.Close()

	require.NoError(t, srcTx.Send(ctx, 1))

	n, err := Forward(ctx, srcRx, Sender[int](dstTx))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, ErrSend)
}
