package middleware

import (
	"github.com/danielolaviobr/ubio/internal/config"
)

// MiddlewareManager 中间件管理器
// 负责管理所有Gin框架的中间件，提供统一的中间件接口
type MiddlewareManager struct {
	securityConfig *config.SecurityConfig // 安全配置，用于中间件配置
	appName        string                 // 应用名称，用于 Server 响应头
}

// NewMiddlewareManager 创建中间件管理器
// 参数:
//   - securityConfig: 安全配置实例
//   - appName: 应用名称
//
// 返回: 中间件管理器实例
func NewMiddlewareManager(securityConfig *config.SecurityConfig, appName string) *MiddlewareManager {
	if securityConfig == nil {
		securityConfig = &config.SecurityConfig{}
	}
	if appName == "" {
		appName = "ubio"
	}
	return &MiddlewareManager{
		securityConfig: securityConfig,
		appName:        appName,
	}
}
