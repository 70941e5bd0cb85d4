package health

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// 时间格式
// ═══════════════════════════════════════════════════════════════════════════

// TimeFormat 健康消息中的时间戳格式
type TimeFormat int

const (
	// TimeFormatRFC3339 RFC3339 字符串，UTC，纳秒精度
	TimeFormatRFC3339 TimeFormat = iota
	// TimeFormatUnix Unix 秒数（浮点数）
	TimeFormatUnix
)

// String 返回格式名称
func (f TimeFormat) String() string {
	switch f {
	case TimeFormatRFC3339:
		return "rfc3339"
	case TimeFormatUnix:
		return "unix"
	default:
		return "unknown"
	}
}

// ParseTimeFormat 解析格式名称
func ParseTimeFormat(s string) (TimeFormat, error) {
	switch s {
	case "rfc3339", "":
		return TimeFormatRFC3339, nil
	case "unix":
		return TimeFormatUnix, nil
	default:
		return 0, fmt.Errorf("unknown time format %q", s)
	}
}

// rfc3339Fixed 固定 9 位小数，纳秒为 0 时也保留小数部分
const rfc3339Fixed = "2006-01-02T15:04:05.000000000Z07:00"

// value 返回可直接编码为 JSON 的时间戳
func (f TimeFormat) value(t time.Time) any {
	if f == TimeFormatUnix {
		return float64(t.UnixNano()) / float64(time.Second)
	}
	return t.UTC().Format(rfc3339Fixed)
}

// ═══════════════════════════════════════════════════════════════════════════
// 健康消息
// ═══════════════════════════════════════════════════════════════════════════

// Status 健康状态负载
type Status struct {
	Status string `json:"status"`
	PID    int    `json:"pid"`
	Time   any    `json:"time,omitempty"`
}

// Message 发布到健康主题的消息
// 健康消息总是保留消息（retained），新订阅者可以立即看到最后状态
type Message struct {
	Topic   string
	Payload []byte
	Retain  bool
}

// Kind 实现 actor.Kinded 接口
func (m Message) Kind() string { return "health.message" }

// String 返回便于日志阅读的表示
func (m Message) String() string {
	return fmt.Sprintf("%s %s", m.Topic, m.Payload)
}

// ServiceHealthTopic 服务健康主题
type ServiceHealthTopic struct {
	topic  string
	format TimeFormat
}

// NewServiceHealthTopic 创建健康主题
func NewServiceHealthTopic(topic string, format TimeFormat) ServiceHealthTopic {
	return ServiceHealthTopic{topic: topic, format: format}
}

// String 返回主题名
func (t ServiceHealthTopic) String() string { return t.topic }

// Format 返回时间戳格式
func (t ServiceHealthTopic) Format() TimeFormat { return t.format }

// UpMessage 生成 "up" 消息，时间戳取 now
func (t ServiceHealthTopic) UpMessage(now time.Time) Message {
	return t.message(Status{
		Status: "up",
		PID:    os.Getpid(),
		Time:   t.format.value(now),
	})
}

// DownMessage 生成 "down" 消息，不带时间戳
func (t ServiceHealthTopic) DownMessage() Message {
	return t.message(Status{
		Status: "down",
		PID:    os.Getpid(),
	})
}

func (t ServiceHealthTopic) message(s Status) Message {
	// Status 只包含基本类型，编码不会失败
	payload, _ := json.Marshal(s)
	return Message{Topic: t.topic, Payload: payload, Retain: true}
}
