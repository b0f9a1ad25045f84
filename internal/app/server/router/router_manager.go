/**
 * 路由:路由管理器
 * @date: 2026.10.14
 * @description: 路由管理器，包含Router结构体、NewRouter函数和SetupRoutes主函数
 */
package router

import (
	"github.com/danielolaviobr/ubio/internal/app/server/middleware"
	"github.com/danielolaviobr/ubio/internal/app/server/setup"
	"github.com/danielolaviobr/ubio/internal/config"
	hbHandler "github.com/danielolaviobr/ubio/internal/handler/heartbeat"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"
	hbService "github.com/danielolaviobr/ubio/internal/service/heartbeat"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Router 路由管理器
type Router struct {
	config            *config.Config
	engine            *gin.Engine
	middlewareManager *middleware.MiddlewareManager
	// 心跳相关Handler
	heartbeatHandler *hbHandler.HeartbeatHandler
	sweepHandler     *hbHandler.SweepHandler
	// 就绪检查依赖
	pinger hbService.Pinger
	// 指标注册器，未启用指标时为 nil
	registry *prometheus.Registry
}

// NewRouter 创建路由管理器实例
// 模块装配在 setup 中完成，这里只负责挂载
func NewRouter(cfg *config.Config, module *setup.HeartbeatModule, registry *prometheus.Registry) *Router {
	middlewareManager := middleware.NewMiddlewareManager(&cfg.Security, cfg.App.Name)

	switch cfg.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	return &Router{
		config:            cfg,
		engine:            engine,
		middlewareManager: middlewareManager,
		heartbeatHandler:  module.HeartbeatHandler,
		sweepHandler:      module.SweepHandler,
		pinger:            module.Pinger,
		registry:          registry,
	}
}

// SetupRoutes 设置全局中间件和路由
func (r *Router) SetupRoutes() {
	// 1) 全局中间件注册
	r.registerGlobalMiddleware()

	// 2) 路由注册
	r.registerRoutes()
}

// GetEngine 获取Gin引擎实例
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// registerGlobalMiddleware 注册全局中间件
// 顺序: Recovery -> CORS -> 安全响应头 -> 请求ID -> 日志 -> 限流
func (r *Router) registerGlobalMiddleware() {
	logger.WithFields(map[string]interface{}{
		"path":      "router_manager.registerGlobalMiddleware",
		"operation": "register_global_middleware",
		"option":    "middlewareManager.attach",
		"func_name": "router.registerGlobalMiddleware",
	}).Info("开始注册全局中间件")

	r.engine.Use(gin.Recovery())

	if r.middlewareManager != nil {
		// CORS 中间件
		r.engine.Use(r.middlewareManager.GinCORSMiddleware())
		// 安全响应头中间件
		r.engine.Use(r.middlewareManager.GinSecurityHeadersMiddleware())
		// 请求ID中间件，日志中间件依赖它生成的 X-Request-ID
		r.engine.Use(r.middlewareManager.GinRequestIDMiddleware())
		// 统一日志中间件
		r.engine.Use(r.middlewareManager.GinLoggingMiddleware())
		// 限流中间件，被拒绝的请求同样记录访问日志
		r.engine.Use(r.middlewareManager.GinRateLimitMiddleware())
	}

	logger.WithFields(map[string]interface{}{
		"path":      "router_manager.registerGlobalMiddleware",
		"operation": "register_global_middleware",
		"option":    "middlewareManager.attach.done",
		"func_name": "router.registerGlobalMiddleware",
	}).Info("全局中间件注册完成")
}

// registerRoutes 注册路由
func (r *Router) registerRoutes() {
	logger.WithFields(map[string]interface{}{
		"path":      "router_manager.registerRoutes",
		"operation": "register_routes",
		"option":    "routes.attach.begin",
		"func_name": "router.registerRoutes",
	}).Info("开始注册路由")

	api := r.engine.Group("/api")
	v1 := api.Group("/v1")

	// 心跳路由
	r.setupHeartbeatRoutes(v1)
	// 健康检查路由
	if r.config.Monitor.Health.Enabled {
		r.setupHealthRoutes(api)
	}
	// 指标路由
	r.setupMetricsRoutes()

	logger.WithFields(map[string]interface{}{
		"path":      "router_manager.registerRoutes",
		"operation": "register_routes",
		"option":    "routes.attach.done",
		"func_name": "router.registerRoutes",
	}).Info("路由注册完成")
}
