/**
 * 中间件:日志相关中间件
 * @date: 2026.10.14
 * @description: 定义日志中间件
 * @func:
 *   - GinLoggingMiddleware Gin日志中间件[生成链路ID，请求进入与完成时各记录一条访问日志]
 */
package middleware

import (
	"time"

	"github.com/danielolaviobr/ubio/internal/pkg/logger"
	"github.com/danielolaviobr/ubio/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GinLoggingMiddleware Gin日志中间件
// 请求进入时记录 method/url/user-agent/ip，完成时记录状态码、响应长度与耗时
// 使用方式: router.Use(middlewareManager.GinLoggingMiddleware())
func (m *MiddlewareManager) GinLoggingMiddleware() gin.HandlerFunc {
	skip := make(map[string]struct{}, len(m.securityConfig.Logging.SkipPaths))
	for _, p := range m.securityConfig.Logging.SkipPaths {
		skip[p] = struct{}{}
	}
	slowThreshold := m.securityConfig.Logging.SlowRequestThreshold

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok || !m.securityConfig.Logging.EnableRequestLog {
			c.Next()
			return
		}

		start := time.Now()
		traceID, err := utils.GenerateUUID()
		if err != nil {
			traceID = c.GetHeader("X-Request-ID")
		}

		clientIP := utils.GetClientIP(c)
		userAgent := c.GetHeader("User-Agent")
		url := c.Request.URL.String()

		// 存储到Gin上下文与标准上下文，service 层通过 utils.GetClientIPFromContext 获取
		c.Set("client_ip", clientIP)
		c.Set("trace_id", traceID)
		ctx := utils.ContextWithClientIP(c.Request.Context(), clientIP)
		c.Request = c.Request.WithContext(ctx)

		logger.LogAccessStart(traceID, c.Request.Method, url, userAgent, clientIP)

		c.Next()

		duration := time.Since(start)
		logger.LogAccessDone(logger.AccessEntry{
			TraceID:       traceID,
			Method:        c.Request.Method,
			URL:           url,
			StatusCode:    c.Writer.Status(),
			ContentLength: c.Writer.Size(),
			UserAgent:     userAgent,
			ClientIP:      clientIP,
			Duration:      duration,
		})

		if slowThreshold > 0 && duration > slowThreshold {
			logger.LogWarn("Slow request", c.GetHeader("X-Request-ID"), url, c.Request.Method, map[string]interface{}{
				"trace_id":    traceID,
				"duration_ms": duration.Milliseconds(),
				"threshold":   slowThreshold.String(),
			})
		}
	}
}
