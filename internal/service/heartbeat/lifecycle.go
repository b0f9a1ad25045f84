/**
 * 心跳服务层:生命周期引擎
 * @date: 2026.10.13
 * @description: 校验心跳的状态流转(创建/刷新、软删除)，拒绝违反约束的操作
 * @func:
 *   - Refresh 创建或刷新心跳
 *   - Delete 软删除心跳
 *   - ListActive 查询活跃心跳
 * @note: 引擎不加锁，读-写之间的并发竞争被接受；存储错误原样返回，不做重试
 */
package heartbeat

import (
	"context"
	"time"

	hbModel "github.com/danielolaviobr/ubio/internal/model/heartbeat"
	"github.com/danielolaviobr/ubio/internal/model/system"
	"github.com/danielolaviobr/ubio/internal/pkg/events"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"
	"github.com/danielolaviobr/ubio/internal/pkg/metrics"
)

// 操作名，用于指标与日志
const (
	OperationRefresh = "refresh"
	OperationDelete  = "delete"
	OperationList    = "list"
)

// LifecycleService 心跳生命周期引擎
type LifecycleService struct {
	store HeartbeatStore
	opts  *options
}

// NewLifecycleService 创建生命周期引擎
func NewLifecycleService(store HeartbeatStore, opts ...Option) *LifecycleService {
	return &LifecycleService{
		store: store,
		opts:  newOptions(opts),
	}
}

// Refresh 创建或刷新心跳
// 已删除的心跳返回 PreconditionFailed 且不发生任何写入；否则执行一次 Upsert
func (s *LifecycleService) Refresh(ctx context.Context, group, id string, meta hbModel.Meta) (*hbModel.HeartbeatView, error) {
	if err := s.validateKey(group, id); err != nil {
		s.opts.metrics.RecordOperation(OperationRefresh, metrics.ResultFailure)
		return nil, err
	}

	prev, err := s.store.FindOne(ctx, group, id)
	if err != nil {
		s.opts.metrics.RecordOperation(OperationRefresh, metrics.ResultFailure)
		return nil, err
	}

	var prevAt time.Time
	if prev != nil {
		if prev.Status == hbModel.StatusDeleted {
			s.opts.metrics.RecordOperation(OperationRefresh, metrics.ResultFailure)
			return nil, system.ErrHeartbeatDeleted
		}
		prevAt = prev.UpdatedAt
	}

	if meta == nil {
		meta = hbModel.Meta{}
	}

	hb, err := s.store.Upsert(ctx, group, id, meta, nextStamp(s.opts.clock(), prevAt))
	if err != nil {
		s.opts.metrics.RecordOperation(OperationRefresh, metrics.ResultFailure)
		return nil, err
	}

	s.opts.metrics.RecordOperation(OperationRefresh, metrics.ResultSuccess)
	s.publish(ctx, &events.Event{
		Type:   events.EventRefreshed,
		Group:  hb.Group,
		ID:     hb.ID,
		Status: string(hb.Status),
		At:     hb.UpdatedAt,
	})

	return hb.View(), nil
}

// Delete 软删除心跳
// 记录不存在返回 BadRequest；重复删除同样成功，并推进 updated_at
func (s *LifecycleService) Delete(ctx context.Context, group, id string) (*hbModel.HeartbeatView, error) {
	if err := s.validateKey(group, id); err != nil {
		s.opts.metrics.RecordOperation(OperationDelete, metrics.ResultFailure)
		return nil, err
	}

	prev, err := s.store.FindOne(ctx, group, id)
	if err != nil {
		s.opts.metrics.RecordOperation(OperationDelete, metrics.ResultFailure)
		return nil, err
	}
	if prev == nil {
		s.opts.metrics.RecordOperation(OperationDelete, metrics.ResultFailure)
		return nil, system.ErrInvalidGroupOrID
	}

	hb, err := s.store.UpdateStatus(ctx, group, id, hbModel.StatusDeleted, nextStamp(s.opts.clock(), prev.UpdatedAt))
	if err != nil {
		s.opts.metrics.RecordOperation(OperationDelete, metrics.ResultFailure)
		return nil, err
	}
	// 读到之后、写入之前记录消失
	if hb == nil {
		s.opts.metrics.RecordOperation(OperationDelete, metrics.ResultFailure)
		return nil, system.ErrInvalidGroupOrID
	}

	logger.LogInfo("heartbeat deleted", "", "service.heartbeat.Delete", "", map[string]interface{}{
		"group": group,
		"id":    id,
	})

	s.opts.metrics.RecordOperation(OperationDelete, metrics.ResultSuccess)
	s.publish(ctx, &events.Event{
		Type:   events.EventDeleted,
		Group:  hb.Group,
		ID:     hb.ID,
		Status: string(hb.Status),
		At:     hb.UpdatedAt,
	})

	return hb.View(), nil
}

// ListActive 查询活跃心跳，group 为空表示全部分组
func (s *LifecycleService) ListActive(ctx context.Context, group string) ([]*hbModel.HeartbeatView, error) {
	heartbeats, err := s.store.ListActive(ctx, group)
	if err != nil {
		s.opts.metrics.RecordOperation(OperationList, metrics.ResultFailure)
		return nil, err
	}
	s.opts.metrics.RecordOperation(OperationList, metrics.ResultSuccess)
	return hbModel.Views(heartbeats), nil
}

// validateKey group/id 不能为空且不能超过最大长度
func (s *LifecycleService) validateKey(group, id string) error {
	if group == "" || id == "" || len(group) > s.opts.maxKeyLength || len(id) > s.opts.maxKeyLength {
		return system.ErrInvalidGroupOrID
	}
	return nil
}

// publish 发布事件，失败只记录日志
func (s *LifecycleService) publish(ctx context.Context, event *events.Event) {
	if err := s.opts.publisher.Publish(ctx, event); err != nil {
		logger.LogWarn("failed to publish heartbeat event", "", "service.heartbeat.publish", "", map[string]interface{}{
			"event": event.Type,
			"group": event.Group,
			"id":    event.ID,
			"error": err.Error(),
		})
	}
}

// nextStamp 生成写入时间戳
// 截断到毫秒(MySQL datetime(3) 的精度)；时钟未超过上一次写入时间时取 prev + 1ms，保证 updated_at 严格递增
func nextStamp(now, prev time.Time) time.Time {
	now = now.Truncate(time.Millisecond)
	if prev.IsZero() || now.After(prev) {
		return now
	}
	return prev.Truncate(time.Millisecond).Add(time.Millisecond)
}
