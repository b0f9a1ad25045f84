package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danielolaviobr/ubio/internal/config"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSweepSchedule 默认清理周期
const DefaultSweepSchedule = "@hourly"

// SchedulerService 调度服务接口
type SchedulerService interface {
	Start(ctx context.Context)
	Stop()
}

// SweepScheduler 过期清理调度
// cron 链上的 SkipIfStillRunning 保证上一次清理未结束时跳过本次触发
type SweepScheduler struct {
	sweeper    *Sweeper
	cron       *cron.Cron
	schedule   string
	maxAge     time.Duration
	runOnStart bool
	clock      func() time.Time

	mu      sync.Mutex
	started bool
}

var _ SchedulerService = (*SweepScheduler)(nil)

// NewSweepScheduler 创建清理调度
func NewSweepScheduler(sweeper *Sweeper, cfg config.SweeperConfig) (*SweepScheduler, error) {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweeper schedule %q: %w", schedule, err)
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	cronLogger := logger.CronLogger{}
	return &SweepScheduler{
		sweeper: sweeper,
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		schedule:   schedule,
		maxAge:     maxAge,
		runOnStart: cfg.RunOnStart,
		clock:      sweeper.opts.clock,
	}, nil
}

// Start 启动调度
func (s *SweepScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.runScheduled(ctx) }); err != nil {
		logger.LogError(err, "", "", "service.heartbeat.SweepScheduler.Start", "", map[string]interface{}{
			"schedule": s.schedule,
		})
		return
	}
	s.cron.Start()
	s.started = true

	logger.LogSystemEvent("sweeper", "start", "Sweep scheduler started", logrus.InfoLevel, map[string]interface{}{
		"schedule": s.schedule,
		"max_age":  s.maxAge.String(),
	})

	if s.runOnStart {
		go s.runScheduled(ctx)
	}
}

// Stop 停止调度，等待正在执行的清理结束
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}

	<-s.cron.Stop().Done()
	s.started = false

	logger.LogSystemEvent("sweeper", "stop", "Sweep scheduler stopped", logrus.InfoLevel, nil)
}

// RunOnce 立即执行一次清理
func (s *SweepScheduler) RunOnce(ctx context.Context) (*SweepResult, error) {
	return s.sweeper.Run(ctx, s.clock().Truncate(time.Millisecond), s.maxAge)
}

// runScheduled 定时触发的清理，失败已由 Sweeper 记录日志与指标，这里不再向上传递
func (s *SweepScheduler) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunOnce(ctx); errors.Is(err, ErrSweepInProgress) {
		logger.LogWarn("sweep skipped: previous sweep still running", "", "service.heartbeat.SweepScheduler", "", nil)
	}
}
