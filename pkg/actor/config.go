package actor

import (
	"log/slog"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// RuntimeConfig 运行时配置
type RuntimeConfig struct {
	// ChannelCapacity 默认输入通道容量
	ChannelCapacity int `koanf:"channel_capacity"`
	// MaxConcurrency 默认并发上限
	MaxConcurrency int `koanf:"max_concurrency"`
	// Logging 默认是否记录消息日志
	Logging bool `koanf:"logging"`
	// ShutdownTimeout 等待 Actor 停止的最长时间
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// Boxes 按消息盒名称覆盖默认值
	Boxes map[string]BoxConfig `koanf:"boxes"`
	// Logger 自定义日志器，不从文件加载
	Logger *slog.Logger `koanf:"-"`
}

// BoxConfig 单个消息盒的配置
// 零值字段沿用 RuntimeConfig 的默认值
type BoxConfig struct {
	Capacity       int   `koanf:"capacity"`
	MaxConcurrency int   `koanf:"max_concurrency"`
	Logging        *bool `koanf:"logging"`
}

// DefaultRuntimeConfig 默认运行时配置
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		ChannelCapacity: 16,
		MaxConcurrency:  4,
		Logging:         true,
		ShutdownTimeout: 30 * time.Second,
	}
}

// LoadRuntimeConfig 从 YAML 文件加载配置，未设置的键取默认值
func LoadRuntimeConfig(path string) (*RuntimeConfig, error) {
	k := koanf.New(".")

	defaults := DefaultRuntimeConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "load default config")
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}

	cfg := &RuntimeConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate 校验配置
func (c *RuntimeConfig) Validate() error {
	if c.ChannelCapacity < 1 {
		return errors.Errorf("channel_capacity must be positive, got %d", c.ChannelCapacity)
	}
	if c.MaxConcurrency < 1 {
		return errors.Errorf("max_concurrency must be positive, got %d", c.MaxConcurrency)
	}
	for name, box := range c.Boxes {
		if box.Capacity < 0 || box.MaxConcurrency < 0 {
			return errors.Errorf("box %s: negative capacity or max_concurrency", name)
		}
	}
	return nil
}

// Box 返回指定消息盒的有效配置
func (c *RuntimeConfig) Box(name string) BoxConfig {
	logging := c.Logging
	resolved := BoxConfig{
		Capacity:       c.ChannelCapacity,
		MaxConcurrency: c.MaxConcurrency,
		Logging:        &logging,
	}

	box, ok := c.Boxes[name]
	if !ok {
		return resolved
	}
	if box.Capacity > 0 {
		resolved.Capacity = box.Capacity
	}
	if box.MaxConcurrency > 0 {
		resolved.MaxConcurrency = box.MaxConcurrency
	}
	if box.Logging != nil {
		resolved.Logging = box.Logging
	}
	return resolved
}

// LoggingOn 返回解析后的日志开关
func (b BoxConfig) LoggingOn() bool {
	return b.Logging == nil || *b.Logging
}
