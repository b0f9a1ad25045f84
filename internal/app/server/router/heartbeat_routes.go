/**
 * 路由:心跳路由
 * @date: 2026.10.14
 * @description: 心跳刷新、删除、查询以及手动清理
 */
package router

import (
	"github.com/gin-gonic/gin"
)

// setupHeartbeatRoutes 设置心跳路由
func (r *Router) setupHeartbeatRoutes(v1 *gin.RouterGroup) {
	heartbeats := v1.Group("/heartbeats")
	{
		// 全部活跃心跳
		heartbeats.GET("", r.heartbeatHandler.ListActive)
		// 指定分组的活跃心跳
		heartbeats.GET("/:group", r.heartbeatHandler.ListActive)
		// 创建或刷新
		heartbeats.POST("/:group/:id", r.heartbeatHandler.Refresh)
		// 软删除
		heartbeats.DELETE("/:group/:id", r.heartbeatHandler.Delete)
	}

	// 立即执行一次过期清理
	v1.POST("/sweeps", r.sweepHandler.Run)
}
