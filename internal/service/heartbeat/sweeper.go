/**
 * 心跳服务层:过期清理
 * @date: 2026.10.13
 * @description: 扫描长时间未刷新的 ACTIVE 心跳，一次批量更新为 STALE
 * @note: 批量写入不再复核时间条件；同一时刻只允许一次清理
 */
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	hbModel "github.com/danielolaviobr/ubio/internal/model/heartbeat"
	"github.com/danielolaviobr/ubio/internal/pkg/events"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"
	"github.com/danielolaviobr/ubio/internal/pkg/metrics"
)

// DefaultMaxAge 心跳最大静默时长
const DefaultMaxAge = 24 * time.Hour

// ErrSweepInProgress 已有清理正在执行
var ErrSweepInProgress = errors.New("sweep already in progress")

// SweepResult 单次清理结果
type SweepResult struct {
	Swept       int64     `json:"swept"`        // 存储确认的更新数量
	Candidates  int       `json:"candidates"`   // 命中条件的心跳数量
	StaleBefore time.Time `json:"stale_before"` // 过期时间阈值
	RunAt       time.Time `json:"run_at"`       // 执行时间
}

// Sweeper 过期清理
type Sweeper struct {
	store   HeartbeatStore
	opts    *options
	running atomic.Bool
}

// NewSweeper 创建过期清理
func NewSweeper(store HeartbeatStore, opts ...Option) *Sweeper {
	return &Sweeper{
		store: store,
		opts:  newOptions(opts),
	}
}

// Run 执行一次清理
// 查询 updated_at <= now - maxAge 的 ACTIVE 心跳；为空时不写入，否则按代理主键一次批量更新为 STALE
func (s *Sweeper) Run(ctx context.Context, now time.Time, maxAge time.Duration) (*SweepResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	if maxAge <= 0 {
		logger.LogWarn("invalid sweep max age, using default", "", "service.heartbeat.Sweeper.Run", "", map[string]interface{}{
			"max_age":     maxAge.String(),
			"default_age": DefaultMaxAge.String(),
		})
		maxAge = DefaultMaxAge
	}
	started := time.Now()
	result := &SweepResult{
		StaleBefore: now.Add(-maxAge),
		RunAt:       now,
	}

	logger.LogSweep("开始清理过期心跳", map[string]interface{}{
		"stale_before": result.StaleBefore,
		"max_age":      maxAge.String(),
	})

	candidates, err := s.store.FindStale(ctx, result.StaleBefore)
	if err != nil {
		s.fail(err, "find_stale", started, now)
		return nil, err
	}
	result.Candidates = len(candidates)

	if len(candidates) == 0 {
		logger.LogSweep("没有需要标记为过期的心跳", nil)
		s.opts.metrics.RecordSweep(metrics.ResultNoop, 0, 0, time.Since(started), now)
		return result, nil
	}

	ids := hbModel.SurrogateIDs(candidates)
	logger.LogSweep(fmt.Sprintf("%d 个心跳将被标记为过期", len(ids)), map[string]interface{}{
		"surrogate_ids": ids,
	})

	// 批量写入不随调度停止而中断
	swept, err := s.store.BatchUpdateStatus(context.WithoutCancel(ctx), ids, hbModel.StatusStale, now)
	if err != nil {
		s.fail(err, "batch_update_status", started, now)
		return nil, err
	}
	result.Swept = swept

	logger.LogSweep(fmt.Sprintf("%d 个心跳已被标记为过期", swept), map[string]interface{}{
		"candidates": result.Candidates,
		"swept":      swept,
	})

	if err := s.opts.publisher.Publish(ctx, &events.Event{
		Type:  events.EventSwept,
		Swept: swept,
		At:    now,
	}); err != nil {
		logger.LogWarn("failed to publish sweep event", "", "service.heartbeat.Sweeper.Run", "", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.opts.metrics.RecordSweep(metrics.ResultSuccess, result.Candidates, swept, time.Since(started), now)
	logger.LogSweep("心跳清理完成", map[string]interface{}{
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return result, nil
}

// Running 是否有清理正在执行
func (s *Sweeper) Running() bool {
	return s.running.Load()
}

func (s *Sweeper) fail(err error, stage string, started, now time.Time) {
	s.opts.metrics.RecordSweep(metrics.ResultFailure, 0, 0, time.Since(started), now)
	logger.LogError(err, "", "", "service.heartbeat.Sweeper.Run", "", map[string]interface{}{
		"stage": stage,
	})
}
