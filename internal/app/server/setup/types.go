/**
 * 初始化
 * @date: 2026.10.14
 * @description: 包含服务初始化相关的类型定义
 * @func: setup 层仅负责依赖装配，不包含业务逻辑
 */
package setup

import (
	hbHandler "github.com/danielolaviobr/ubio/internal/handler/heartbeat"
	"github.com/danielolaviobr/ubio/internal/pkg/events"
	hbService "github.com/danielolaviobr/ubio/internal/service/heartbeat"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Infrastructure 外部依赖(数据库、Redis、事件总线、指标注册器)
// 按 heartbeat.store 与各功能开关按需创建，未使用的字段为 nil
type Infrastructure struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher events.Publisher
	Registry  *prometheus.Registry
}

// HeartbeatModule 是心跳模块的聚合输出
// Handler 本身包含 Service，这里把 Service 也暴露出来，方便 CLI 直接调用
type HeartbeatModule struct {
	// Handlers
	HeartbeatHandler *hbHandler.HeartbeatHandler
	SweepHandler     *hbHandler.SweepHandler

	// Services
	LifecycleService *hbService.LifecycleService
	Sweeper          *hbService.Sweeper
	Scheduler        *hbService.SweepScheduler

	// Store 当前使用的存储，Pinger 用于就绪探针
	Store  hbService.HeartbeatStore
	Pinger hbService.Pinger
}
