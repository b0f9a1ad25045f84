/**
 * 应用:心跳服务
 * @date: 2026.10.14
 * @description: 组装外部依赖、心跳模块与路由，管理调度的启停
 */
package server

import (
	"context"

	"github.com/danielolaviobr/ubio/internal/app/server/router"
	"github.com/danielolaviobr/ubio/internal/app/server/setup"
	"github.com/danielolaviobr/ubio/internal/config"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// App 应用程序结构体
type App struct {
	config *config.Config
	infra  *setup.Infrastructure
	module *setup.HeartbeatModule
	router *router.Router

	cancel context.CancelFunc
}

// NewApp 创建新的应用程序实例
func NewApp(cfg *config.Config) (*App, error) {
	infra, err := setup.BuildInfrastructure(cfg)
	if err != nil {
		return nil, err
	}

	module, err := setup.BuildHeartbeatModule(cfg, infra)
	if err != nil {
		infra.Close()
		return nil, err
	}

	r := router.NewRouter(cfg, module, infra.Registry)
	r.SetupRoutes()

	return &App{
		config: cfg,
		infra:  infra,
		module: module,
		router: r,
	}, nil
}

// GetRouter 获取路由器实例
func (a *App) GetRouter() *router.Router {
	return a.router
}

// GetConfig 获取配置
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetModule 获取心跳模块
func (a *App) GetModule() *setup.HeartbeatModule {
	return a.module
}

// Start 启动后台任务，sweeper.enabled 为 false 时只提供 API
func (a *App) Start() error {
	if !a.config.Sweeper.Enabled {
		logger.LogSystemEvent("app", "start", "Sweep scheduler disabled", logrus.InfoLevel, nil)
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.module.Scheduler.Start(ctx)
	return nil
}

// Stop 停止调度并释放外部依赖
func (a *App) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.module.Scheduler.Stop()
	a.infra.Close()

	logger.LogSystemEvent("app", "stop", "Application stopped", logrus.InfoLevel, nil)
	return nil
}
