/**
 * 事件:心跳生命周期事件
 * @date: 2026.10.13
 * @description: 心跳刷新/删除/过期清理后对外发布的事件
 * 事件发布失败只记录日志，不影响业务操作的结果
 * @func:
 *   - Publisher 事件发布接口
 *   - NopPublisher 空实现
 *   - NATSPublisher NATS 实现
 */
package events

import (
	"context"
	"time"
)

// EventType 事件类型
type EventType string

const (
	// EventRefreshed 心跳创建或刷新
	EventRefreshed EventType = "refreshed"
	// EventDeleted 心跳被删除
	EventDeleted EventType = "deleted"
	// EventSwept 过期清理完成
	EventSwept EventType = "swept"
)

// Event 心跳事件
type Event struct {
	Type   EventType `json:"type"`             // 事件类型
	Group  string    `json:"group,omitempty"`  // 心跳分组
	ID     string    `json:"id,omitempty"`     // 心跳ID
	Status string    `json:"status,omitempty"` // 事件发生后的状态
	At     time.Time `json:"at"`               // 事件时间
	Swept  int64     `json:"swept,omitempty"`  // 清理数量，仅 swept 事件
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close()
}

// NopPublisher 空实现，未启用事件发布时使用
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

// Publish 空实现
func (NopPublisher) Publish(context.Context, *Event) error { return nil }

// Close 空实现
func (NopPublisher) Close() {}
