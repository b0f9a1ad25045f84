/**
 * 路由:健康检查路由
 * @date: 2026.10.14
 * @description: 包含健康检查、就绪检查、存活检查与指标路由
 */
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/danielolaviobr/ubio/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// readinessTimeout 就绪检查访问存储的超时时间
const readinessTimeout = 2 * time.Second

// setupHealthRoutes 设置健康检查路由
func (r *Router) setupHealthRoutes(api *gin.RouterGroup) {
	// 健康检查
	api.GET("/health", r.healthCheck)
	// 就绪检查
	api.GET("/ready", r.readinessCheck)
	// 存活检查
	api.GET("/live", r.livenessCheck)
}

// setupMetricsRoutes 设置指标路由
func (r *Router) setupMetricsRoutes() {
	if r.registry == nil {
		return
	}
	path := r.config.Monitor.Metrics.Path
	if path == "" {
		path = "/metrics"
	}
	r.engine.GET(path, gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
}

// 健康检查处理器
func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": logger.NowFormatted(),
	})
}

// readinessCheck 就绪检查处理器，存储不可达时返回 503
func (r *Router) readinessCheck(c *gin.Context) {
	if r.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := r.pinger.Ping(ctx); err != nil {
			logger.LogWarn("readiness check failed", c.GetHeader("X-Request-ID"), c.Request.URL.String(), c.Request.Method, map[string]interface{}{
				"error": err.Error(),
			})
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "not_ready",
				"timestamp": logger.NowFormatted(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": logger.NowFormatted(),
	})
}

// livenessCheck 存活检查处理器
func (r *Router) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": logger.NowFormatted(),
	})
}
