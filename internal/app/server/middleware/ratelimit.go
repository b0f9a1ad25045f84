/**
 * 中间件:限流器中间件
 * @date: 2026.10.15
 * @description: 按客户端IP限流，令牌桶由 golang.org/x/time/rate 提供
 * @func:
 *   - GinRateLimitMiddleware 默认限流器中间件[根据客户端IP进行限流]
 */
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/danielolaviobr/ubio/internal/model/system"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"
	"github.com/danielolaviobr/ubio/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 限流默认值
const (
	defaultRequestsPerSecond = 50
	defaultBurst             = 100
	defaultCleanupInterval   = 10 * time.Minute
)

// ipLimiter 单个客户端的令牌桶
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter 按 key 维护令牌桶
// 超过 cleanup 未使用的令牌桶在下一次 Allow 时回收，不启动后台协程
type KeyedLimiter struct {
	limiters  map[string]*ipLimiter
	mutex     sync.Mutex
	limit     rate.Limit
	burst     int
	cleanup   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewKeyedLimiter 创建限流器
func NewKeyedLimiter(perSecond float64, burst int, cleanup time.Duration) *KeyedLimiter {
	if perSecond <= 0 {
		perSecond = defaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	if cleanup <= 0 {
		cleanup = defaultCleanupInterval
	}
	return &KeyedLimiter{
		limiters:  make(map[string]*ipLimiter),
		limit:     rate.Limit(perSecond),
		burst:     burst,
		cleanup:   cleanup,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow 检查是否允许请求
func (l *KeyedLimiter) Allow(key string) bool {
	l.mutex.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) > l.cleanup {
		for k, v := range l.limiters {
			if now.Sub(v.lastSeen) > l.cleanup {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	entry, exists := l.limiters[key]
	if !exists {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	l.mutex.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Len 当前维护的令牌桶数量
func (l *KeyedLimiter) Len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.limiters)
}

// GinRateLimitMiddleware 默认限流中间件
// 使用配置文件中的限流策略，超限返回 429
func (m *MiddlewareManager) GinRateLimitMiddleware() gin.HandlerFunc {
	cfg := m.securityConfig.RateLimit
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := NewKeyedLimiter(cfg.RequestsPerSecond, cfg.Burst, cfg.CleanupInterval)
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		clientIP := utils.GetClientIP(c)
		if !limiter.Allow(clientIP) {
			logger.LogWarn("Rate limit exceeded for client", c.GetHeader("X-Request-ID"), c.Request.URL.Path, c.Request.Method, map[string]interface{}{
				"operation": "rate_limit_exceeded",
				"option":    "block_request",
				"func_name": "middleware.ratelimit.GinRateLimitMiddleware",
				"client_ip": clientIP,
			})
			c.AbortWithStatusJSON(http.StatusTooManyRequests, system.APIResponse{
				Code:    http.StatusTooManyRequests,
				Status:  "failed",
				Message: "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
