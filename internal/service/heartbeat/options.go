package heartbeat

import (
	"time"

	"github.com/danielolaviobr/ubio/internal/pkg/events"
	"github.com/danielolaviobr/ubio/internal/pkg/metrics"
)

// DefaultMaxKeyLength group/id 默认最大长度，与表结构列宽一致
const DefaultMaxKeyLength = 128

// options 生命周期引擎与过期清理共用的可选依赖
type options struct {
	clock        func() time.Time
	publisher    events.Publisher
	metrics      metrics.Collector
	maxKeyLength int
}

// Option 可选依赖设置
type Option func(*options)

// WithClock 设置时钟，测试中用于固定时间
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithPublisher 设置事件发布者
func WithPublisher(publisher events.Publisher) Option {
	return func(o *options) {
		if publisher != nil {
			o.publisher = publisher
		}
	}
}

// WithMetrics 设置指标采集器
func WithMetrics(collector metrics.Collector) Option {
	return func(o *options) {
		if collector != nil {
			o.metrics = collector
		}
	}
}

// WithMaxKeyLength 设置 group/id 最大长度
func WithMaxKeyLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxKeyLength = n
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		clock:        func() time.Time { return time.Now().UTC() },
		publisher:    events.NopPublisher{},
		metrics:      metrics.NewNop(),
		maxKeyLength: DefaultMaxKeyLength,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
