package setup

import (
	"fmt"

	"github.com/danielolaviobr/ubio/internal/config"
	hbHandler "github.com/danielolaviobr/ubio/internal/handler/heartbeat"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"
	"github.com/danielolaviobr/ubio/internal/pkg/metrics"
	memRepo "github.com/danielolaviobr/ubio/internal/repo/memory/heartbeat"
	sqlRepo "github.com/danielolaviobr/ubio/internal/repo/mysql/heartbeat"
	redisRepo "github.com/danielolaviobr/ubio/internal/repo/redis/heartbeat"
	hbService "github.com/danielolaviobr/ubio/internal/service/heartbeat"
)

// 编译期检查各存储实现了存储契约
var (
	_ hbService.HeartbeatStore = (*sqlRepo.HeartbeatRepository)(nil)
	_ hbService.HeartbeatStore = (*redisRepo.HeartbeatRepository)(nil)
	_ hbService.HeartbeatStore = (*memRepo.HeartbeatRepository)(nil)
	_ hbService.Pinger         = (*sqlRepo.HeartbeatRepository)(nil)
	_ hbService.Pinger         = (*redisRepo.HeartbeatRepository)(nil)
	_ hbService.Pinger         = (*memRepo.HeartbeatRepository)(nil)
)

// storeWithPing 同时具备存储契约和连通性检查
type storeWithPing interface {
	hbService.HeartbeatStore
	hbService.Pinger
}

// BuildHeartbeatModule 构建心跳模块
// 1. 按 heartbeat.store 选择存储
// 2. 构建生命周期引擎、过期清理与调度
// 3. 构建 Handler
func BuildHeartbeatModule(cfg *config.Config, infra *Infrastructure) (*HeartbeatModule, error) {
	logger.WithFields(map[string]interface{}{
		"path":      "setup.heartbeat",
		"operation": "build_module",
		"func_name": "setup.BuildHeartbeatModule",
		"store":     cfg.Heartbeat.Store,
	}).Info("开始初始化心跳模块")

	// 1. Repository 初始化
	var store storeWithPing
	switch cfg.Heartbeat.Store {
	case StoreDatabase, "":
		if infra.DB == nil {
			return nil, fmt.Errorf("heartbeat store %q requires a database connection", StoreDatabase)
		}
		store = sqlRepo.NewHeartbeatRepository(infra.DB)
	case StoreRedis:
		if infra.Redis == nil {
			return nil, fmt.Errorf("heartbeat store %q requires a redis connection", StoreRedis)
		}
		store = redisRepo.NewHeartbeatRepository(infra.Redis, cfg.Database.Redis.KeyPrefix)
	case StoreMemory:
		store = memRepo.NewHeartbeatRepository()
	default:
		return nil, fmt.Errorf("unsupported heartbeat store: %s", cfg.Heartbeat.Store)
	}

	// 2. Service 初始化
	var collector metrics.Collector = metrics.NewNop()
	if infra.Registry != nil {
		p, err := metrics.NewPrometheus(infra.Registry, cfg.Monitor.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		collector = p
	}
	opts := []hbService.Option{
		hbService.WithPublisher(infra.Publisher),
		hbService.WithMetrics(collector),
		hbService.WithMaxKeyLength(cfg.Heartbeat.MaxKeyLength),
	}

	lifecycleService := hbService.NewLifecycleService(store, opts...)
	sweeper := hbService.NewSweeper(store, opts...)
	scheduler, err := hbService.NewSweepScheduler(sweeper, cfg.Sweeper)
	if err != nil {
		return nil, err
	}

	// 3. Handler 初始化
	module := &HeartbeatModule{
		HeartbeatHandler: hbHandler.NewHeartbeatHandler(lifecycleService),
		SweepHandler:     hbHandler.NewSweepHandler(scheduler),
		LifecycleService: lifecycleService,
		Sweeper:          sweeper,
		Scheduler:        scheduler,
		Store:            store,
		Pinger:           store,
	}

	logger.WithFields(map[string]interface{}{
		"path":      "setup.heartbeat",
		"operation": "build_module",
		"func_name": "setup.BuildHeartbeatModule",
	}).Info("心跳模块初始化完成")

	return module, nil
}
