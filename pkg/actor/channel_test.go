package actor

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============== 通道 ==============

func TestChannel_FIFO(t *testing.T) {
	ctx := testContext(t)
	tx, rx := NewChannel[int](8)

	go func() {
		defer tx.CloseSender()
		for i := 0; i < 100; i++ {
			if err := tx.Send(ctx, i); err != nil {
				return
			}
		}
	}()

	var got []int
	for {
		v, ok := rx.Recv(ctx)
		if !ok {
			break
		}
		got = append(got, v)
	}

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestChannel_CapacityClamp(t *testing.T) {
	_, rx := NewChannel[int](0)
	assert.Equal(t, 1, rx.Cap())

	_, rx = NewChannel[int](-3)
	assert.Equal(t, 1, rx.Cap())
}

func TestChannel_Backpressure(t *testing.T) {
	ctx := testContext(t)
	tx, rx := NewChannel[string](2)

	require.NoError(t, tx.Send(ctx, "a"))
	require.NoError(t, tx.Send(ctx, "b"))
	assert.Equal(t, 2, rx.Len())

	sent := make(chan error, 1)
	go func() {
		sent <- tx.Send(ctx, "c")
	}()

	select {
	case <-sent:
		t.Fatal("third send should suspend while the channel is full")
	case <-time.After(50 * time.Millisecond):
	}

	v, ok := rx.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	select {
	case err := <-sent:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("third send should resume after a receive")
	}

	v, _ = rx.Recv(ctx)
	assert.Equal(t, "b", v)
	v, _ = rx.Recv(ctx)
	assert.Equal(t, "c", v)
}

func TestChannel_SendContextCancelled(t *testing.T) {
	tx, _ := NewChannel[int](1)
	require.NoError(t, tx.Send(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tx.Send(ctx, 2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannel_ReceiverDropped(t *testing.T) {
	ctx := testContext(t)
	tx, rx := NewChannel[int](1)
	require.NoError(t, tx.Send(ctx, 1))

	// 阻塞中的发送者在接收端丢弃后被唤醒
	blocked := make(chan error, 1)
	go func() {
		blocked <- tx.Send(ctx, 2)
	}()
	time.Sleep(20 * time.Millisecond)

	rx.Close()
	rx.Close()

	select {
	case err := <-blocked:
		assert.ErrorIs(t, err, ErrSend)
	case <-time.After(time.Second):
		t.Fatal("blocked sender was not woken")
	}

	err := tx.Send(ctx, 3)
	assert.ErrorIs(t, err, ErrSend)
	assert.Contains(t, err.Error(), "receiver dropped")
}

func TestChannel_EndsAfterLastSender(t *testing.T) {
	ctx := testContext(t)
	tx, rx := NewChannel[int](4)
	tx2 := tx.Clone()

	tx.CloseSender()
	tx.CloseSender() // 幂等，不影响其他发送端

	require.NoError(t, tx2.Send(ctx, 7))
	tx2.CloseSender()

	v, ok := rx.Recv(ctx)
	require.True(t, ok, "buffered message is delivered before end of stream")
	assert.Equal(t, 7, v)

	_, ok = rx.Recv(ctx)
	assert.False(t, ok)
}

func TestChannel_ClosedSender(t *testing.T) {
	tx, _ := NewChannel[int](1)
	keep := tx.Clone()
	defer keep.CloseSender()

	tx.CloseSender()

	err := tx.Send(context.Background(), 1)
	assert.ErrorIs(t, err, ErrSend)
	assert.Contains(t, err.Error(), "sender closed")
}

func TestChannel_CloneAfterEnd(t *testing.T) {
	tx, rx := NewChannel[int](1)
	tx.CloseSender()

	late := tx.Clone()
	assert.ErrorIs(t, late.Send(context.Background(), 1), ErrSend)

	_, ok := rx.Recv(context.Background())
	assert.False(t, ok)
}

func TestReceiver_RecvContextCancelled(t *testing.T) {
	tx, rx := NewChannel[int](1)
	defer tx.CloseSender()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok := rx.Recv(ctx)
	assert.False(t, ok)
}

func TestReceiver_NilC(t *testing.T) {
	var rx *Receiver[int]
	assert.Nil(t, rx.C())
}

// ============== 发送端 ==============

func TestAdapt(t *testing.T) {
	ctx := testContext(t)
	tx, rx := NewChannel[string](4)

	s := Adapt(Sender[string](tx), strconv.Itoa)
	require.NoError(t, s.Send(ctx, 42))

	v, ok := rx.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, "42", v)

	// 关闭适配器即关闭底层发送端
	s.CloseSender()
	_, ok = rx.Recv(ctx)
	assert.False(t, ok)
}

func TestLoggingSender(t *testing.T) {
	logs := captureLogs(t)
	ctx := testContext(t)
	tx, rx := NewChannel[pingMessage](4)

	s := NewLoggingSender("pinger", Sender[pingMessage](tx))
	require.NoError(t, s.Send(ctx, pingMessage{Seq: 1}))

	v, ok := rx.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, v.Seq)

	out := logs.String()
	assert.Contains(t, out, "msg=send")
	assert.Contains(t, out, "box=pinger")
	assert.Contains(t, out, "kind=ping")

	s.TurnLoggingOn(false)
	assert.False(t, s.LoggingIsOn())
	require.NoError(t, s.Send(ctx, pingMessage{Seq: 2}))
	assert.Equal(t, out, logs.String())

	s.CloseSender()
	_, _ = rx.Recv(ctx)
	_, ok = rx.Recv(ctx)
	assert.False(t, ok)
}

func TestNullSender(t *testing.T) {
	var s Sender[int] = NullSender[int]{}
	assert.NoError(t, s.Send(context.Background(), 1))
	s.CloseSender()
	assert.NoError(t, s.Send(context.Background(), 2))
}
