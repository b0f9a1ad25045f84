package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielolaviobr/ubio/internal/config"
	"github.com/danielolaviobr/ubio/internal/pkg/version"

	"github.com/nats-io/nats.go"
)

// NATSPublisher 通过 NATS 发布心跳事件
// 主题格式: <subject_prefix>.<event_type>，例如 heartbeat.refreshed
type NATSPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher 连接 NATS 并创建发布者
func NewNATSPublisher(cfg *config.NATSConfig) (*NATSPublisher, error) {
	name := cfg.Name
	if name == "" {
		name = version.GetUserAgent()
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(cfg.MaxReconnects),
	}
	if cfg.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(cfg.ReconnectWait))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return NewNATSPublisherWithConn(conn, cfg.SubjectPrefix), nil
}

// NewNATSPublisherWithConn 使用已有连接创建发布者
func NewNATSPublisherWithConn(conn *nats.Conn, subjectPrefix string) *NATSPublisher {
	if subjectPrefix == "" {
		subjectPrefix = "heartbeat"
	}
	return &NATSPublisher{conn: conn, subjectPrefix: subjectPrefix}
}

// Subject 事件类型对应的主题
func (p *NATSPublisher) Subject(eventType EventType) string {
	return p.subjectPrefix + "." + string(eventType)
}

// Publish 发布事件(至多一次)
func (p *NATSPublisher) Publish(ctx context.Context, event *Event) error {
	if event == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(p.Subject(event.Type), payload); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}
	return nil
}

// Close 刷新缓冲并关闭连接
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}
