// Package actor 提供边缘代理的 Actor 运行时：基于消息盒（message box）的通信层
//
// Actor 之间只通过有界、类型化的消息通道通信，不共享内存：
// • 每个 Actor 独占一个消息盒
// • 消息盒的 Recv/Send 是 Actor 与外界交互的唯一方式
// • 控制信号（关闭请求）通过独立通道送达，与业务输入一起被 select
// • 通道满时发送方挂起（背压），这是唯一的流控手段
//
// # 核心组件
//
// [NewChannel] 创建有界 FIFO 通道，返回 [ChanSender] 与 [Receiver]。
// [Sender] 是多态发送接口，[Adapt] 在两个不同消息类型的通道之间做值转换。
//
// [SimpleMessageBox] 是基础消息盒：一个输入接收端 + 一个控制信号接收端 + 一个输出发送端。
//
//	client, service := actor.Channel[string, int]("echo", 16)
//
// [ServerMessageBox] 为请求/响应服务携带 [ClientID]，用于把响应路由回对应客户端。
//
// [ConcurrentServerMessageBox] 在服务端消息盒之上增加准入控制：
// 同时在途的请求数不超过 maxConcurrency。
//
// [ClientMessageBox] 面向单个未完成请求的客户端：发送请求，等待响应。
//
// # 运行时
//
// [Runtime] 启动实现 [Actor] 接口的 Actor，向它们发送 [RuntimeRequestShutdown]，
// 并等待其 Run 返回。取消是协作式的：Actor 只在自己的 Recv 调用点观察到关闭信号。
//
// 完整使用示例请参考 example_test.go 或运行 go doc -all。
package actor
