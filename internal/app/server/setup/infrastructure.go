package setup

import (
	"fmt"

	"github.com/danielolaviobr/ubio/internal/config"
	"github.com/danielolaviobr/ubio/internal/pkg/database"
	"github.com/danielolaviobr/ubio/internal/pkg/events"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// 存储后端
const (
	StoreDatabase = "database"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// BuildInfrastructure 按配置创建外部依赖
// 事件总线连接失败不阻止启动，退化为不发布事件
func BuildInfrastructure(cfg *config.Config) (*Infrastructure, error) {
	logger.WithFields(map[string]interface{}{
		"path":      "setup.infrastructure",
		"operation": "build_infrastructure",
		"func_name": "setup.BuildInfrastructure",
		"store":     cfg.Heartbeat.Store,
	}).Info("开始初始化外部依赖")

	infra := &Infrastructure{Publisher: events.NopPublisher{}}

	switch cfg.Heartbeat.Store {
	case StoreDatabase, "":
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return nil, err
		}
		infra.DB = db
		// SQLite 通常是内存库或单机文件，启动时直接建表；MySQL 通过 migrate 命令建表
		if cfg.Database.Driver == database.DriverSQLite {
			if err := database.AutoMigrate(db); err != nil {
				infra.Close()
				return nil, err
			}
		}
	case StoreRedis:
		client, err := database.NewRedisConnection(&cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		infra.Redis = client
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unsupported heartbeat store: %s", cfg.Heartbeat.Store)
	}

	if cfg.Events.NATS.Enabled {
		publisher, err := events.NewNATSPublisher(&cfg.Events.NATS)
		if err != nil {
			logger.LogSystemEvent("events", "connect_failed", "NATS unavailable, heartbeat events disabled", logrus.WarnLevel, map[string]interface{}{
				"url":   cfg.Events.NATS.URL,
				"error": err.Error(),
			})
		} else {
			infra.Publisher = publisher
		}
	}

	if cfg.Monitor.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		infra.Registry = registry
	}

	logger.WithFields(map[string]interface{}{
		"path":      "setup.infrastructure",
		"operation": "build_infrastructure",
		"func_name": "setup.BuildInfrastructure",
	}).Info("外部依赖初始化完成")

	return infra, nil
}

// Close 释放外部依赖
func (i *Infrastructure) Close() {
	if i.Publisher != nil {
		i.Publisher.Close()
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			logger.Warnf("failed to close redis client: %v", err)
		}
	}
	if i.DB != nil {
		if err := database.Close(i.DB); err != nil {
			logger.Warnf("failed to close database: %v", err)
		}
	}
}
