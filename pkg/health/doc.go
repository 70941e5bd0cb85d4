// Package health 提供服务健康监控 Actor
//
// [Monitor] 是建立在 [actor.ServerMessageBox] 之上的服务端 Actor：
// 任意多个客户端通过 [Check] 请求询问服务状态，Monitor 以 [Report] 回复，
// 其中携带发布到健康主题上的 "up" 状态消息。
//
// # 健康消息
//
// [ServiceHealthTopic] 负责生成健康消息：
//
//	{"status":"up","pid":1234,"time":"2026-10-15T08:00:00.123456789Z"}
//	{"status":"down","pid":1234}
//
// 时间戳格式由 [TimeFormat] 决定，可以是 RFC3339 字符串或 Unix 秒数。
//
// # 生命周期
//
// 设置了发布端时，Monitor 启动后发布一条 "up" 消息，
// 输入结束（关闭信号或所有客户端断开）后发布一条 "down" 消息。
//
// # 使用示例
//
//	b := health.NewBuilder("health", health.NewServiceHealthTopic("te/device/main/service/agent/status/health", health.TimeFormatRFC3339), 4)
//	client := actor.NewClientMessageBox[health.Check, health.Report]("checker", b)
//	signals := b.GetSignalSender()
//	monitor := b.Build(health.WithPublisher(mqttOut))
//	rt.Spawn(monitor, signals)
//
//	report, err := client.AwaitResponse(ctx, health.NewCheck())
package health
