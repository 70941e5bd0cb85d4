package actor_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lwmacct/251215-go-pkg-mbox/pkg/actor"
)

// Example_channel 演示一对相互连接的消息盒
func Example_channel() {
	ctx := context.Background()
	client, service := actor.Channel[string, string]("upper", 4)

	_ = client.Send(ctx, "hello")
	req, _ := service.Recv(ctx)
	_ = service.Send(ctx, strings.ToUpper(req))

	resp, _ := client.Recv(ctx)
	fmt.Println(service.Name(), "->", resp)

	// Output:
	// upper-Service -> HELLO
}

// Example_clientMessageBox 演示请求/响应服务
func Example_clientMessageBox() {
	ctx := context.Background()
	server := actor.NewServerMessageBoxBuilder[int, int]("doubler", 4)
	client := actor.NewClientMessageBox[int, int]("client", server)
	box := server.Build()

	go func() {
		for {
			req, ok := box.Recv(ctx)
			if !ok {
				return
			}
			_ = box.Send(ctx, actor.ReplyTo(req, req.Payload*2))
		}
	}()

	for _, n := range []int{1, 2, 3} {
		resp, err := client.AwaitResponse(ctx, n)
		fmt.Println(n, resp, err)
	}
	client.Close()

	// Output:
	// 1 2 <nil>
	// 2 4 <nil>
	// 3 6 <nil>
}

// Example_concurrentServer 演示并发服务端的准入控制
func Example_concurrentServer() {
	ctx := context.Background()
	server := actor.NewServerMessageBoxBuilder[string, int]("length", 4)
	client := actor.NewClientMessageBox[string, int]("client", server)
	box := server.BuildConcurrent(2)

	go func() {
		for {
			req, ok := box.Recv(ctx)
			if !ok {
				return
			}
			box.SendResponseOnceDone(actor.Go(func() (actor.Envelope[int], error) {
				return actor.ReplyTo(req, len(req.Payload)), nil
			}))
		}
	}()

	resp, _ := client.AwaitResponse(ctx, "software")
	fmt.Println(resp)
	client.Close()

	// Output:
	// 8
}

// Example_runtime 演示运行时启动与关闭 Actor
func Example_runtime() {
	ctx := context.Background()
	rt := actor.NewRuntime("example", nil)

	b := actor.NewMessageBoxBuilder[string, string]("printer", 4)
	input := b.GetSender()
	signals := b.GetSignalSender()
	box := b.Build()

	done := make(chan struct{})
	printer := actor.NewActor("printer", func(ctx context.Context) error {
		defer close(done)
		for {
			msg, ok := box.Recv(ctx)
			if !ok {
				fmt.Println("printer stopped")
				return nil
			}
			fmt.Println("printing", msg)
		}
	})
	_ = rt.Spawn(printer, signals)

	_ = input.Send(ctx, "report")
	input.CloseSender()

	// 输入耗尽后由关闭信号结束
	time.Sleep(20 * time.Millisecond)
	_ = rt.Shutdown(ctx)
	<-done

	// Output:
	// printing report
	// printer stopped
}

// Example_newExponentialBackoffStrategy 演示指数退避
func Example_newExponentialBackoffStrategy() {
	s := actor.NewExponentialBackoffStrategy(100*time.Millisecond, time.Second, 5, nil)

	for i := 0; i < 5; i++ {
		d := s.HandleFailure("worker", nil).(actor.DirectiveWithDelay)
		fmt.Println(d.Directive, d.Delay)
	}

	// Output:
	// Restart 100ms
	// Restart 200ms
	// Restart 400ms
	// Restart 800ms
	// Restart 1s
}
