/**
 * 配置:配置结构体定义
 * @date: 2026.10.12
 * @description: 心跳服务配置结构体，字段与 configs/config.yaml 中一级字段保持一致
 * @func:
 *   - GetAddress 获取服务监听地址
 *   - GetMySQLDSN 基于 go-sql-driver 生成 MySQL DSN
 *   - GetRedisAddress 获取 Redis 地址
 */
package config

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config 应用配置结构体 [这里的字段和配置文件中一级字段保持一致，否则会没有值]
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`       // 服务器配置
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`   // 数据库配置
	Heartbeat HeartbeatConfig `yaml:"heartbeat" mapstructure:"heartbeat"` // 心跳存储配置
	Sweeper   SweeperConfig   `yaml:"sweeper" mapstructure:"sweeper"`     // 过期清理任务配置
	Events    EventsConfig    `yaml:"events" mapstructure:"events"`       // 事件发布配置
	Log       LogConfig       `yaml:"log" mapstructure:"log"`             // 日志配置
	Security  SecurityConfig  `yaml:"security" mapstructure:"security"`   // 安全配置
	Monitor   MonitorConfig   `yaml:"monitor" mapstructure:"monitor"`     // 监控配置
	App       AppConfig       `yaml:"app" mapstructure:"app"`             // 应用配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`                         // 服务器主机地址
	Port            int           `yaml:"port" mapstructure:"port"`                         // 服务器端口
	Mode            string        `yaml:"mode" mapstructure:"mode"`                         // 运行模式: debug, release, test
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`         // 读取超时时间
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`       // 写入超时时间
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`         // 空闲超时时间
	MaxHeaderBytes  int           `yaml:"max_header_bytes" mapstructure:"max_header_bytes"` // 最大请求头字节数
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"` // 优雅关闭超时时间
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string       `yaml:"driver" mapstructure:"driver"` // gorm 驱动: mysql, sqlite
	MySQL  MySQLConfig  `yaml:"mysql" mapstructure:"mysql"`   // MySQL配置
	SQLite SQLiteConfig `yaml:"sqlite" mapstructure:"sqlite"` // SQLite配置(单机部署/测试)
	Redis  RedisConfig  `yaml:"redis" mapstructure:"redis"`   // Redis配置
}

// MySQLConfig MySQL数据库配置
type MySQLConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`                             // 数据库主机
	Port            int           `yaml:"port" mapstructure:"port"`                             // 数据库端口
	Username        string        `yaml:"username" mapstructure:"username"`                     // 用户名
	Password        string        `yaml:"password" mapstructure:"password"`                     // 密码
	Database        string        `yaml:"database" mapstructure:"database"`                     // 数据库名
	Charset         string        `yaml:"charset" mapstructure:"charset"`                       // 字符集
	ParseTime       bool          `yaml:"parse_time" mapstructure:"parse_time"`                 // 是否解析时间
	Loc             string        `yaml:"loc" mapstructure:"loc"`                               // 时区
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`         // 最大空闲连接数
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`         // 最大打开连接数
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`   // 连接最大生存时间
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"` // 连接最大空闲时间
	LogLevel        string        `yaml:"log_level" mapstructure:"log_level"`                   // 日志级别
}

// SQLiteConfig SQLite数据库配置
type SQLiteConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`           // 数据库文件路径, file::memory:?cache=shared 表示内存库
	LogLevel string `yaml:"log_level" mapstructure:"log_level"` // 日志级别
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`                     // Redis主机
	Port         int           `yaml:"port" mapstructure:"port"`                     // Redis端口
	Password     string        `yaml:"password" mapstructure:"password"`             // Redis密码
	Database     int           `yaml:"database" mapstructure:"database"`             // Redis数据库索引
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`           // 连接池大小
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"` // 最小空闲连接数
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`     // 连接超时
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`     // 读取超时
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`   // 写入超时
	PoolTimeout  time.Duration `yaml:"pool_timeout" mapstructure:"pool_timeout"`     // 连接池超时
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`     // 空闲超时
	KeyPrefix    string        `yaml:"key_prefix" mapstructure:"key_prefix"`         // 键前缀
}

// HeartbeatConfig 心跳存储配置
type HeartbeatConfig struct {
	Store        string `yaml:"store" mapstructure:"store"`                   // 存储后端: database, redis, memory
	MaxKeyLength int    `yaml:"max_key_length" mapstructure:"max_key_length"` // group/id 最大长度
}

// SweeperConfig 过期清理任务配置
type SweeperConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`           // 是否启用定时清理
	Schedule   string        `yaml:"schedule" mapstructure:"schedule"`         // cron 表达式, 默认 @hourly
	MaxAge     time.Duration `yaml:"max_age" mapstructure:"max_age"`           // 心跳最大静默时长, 默认 24h
	RunOnStart bool          `yaml:"run_on_start" mapstructure:"run_on_start"` // 启动时是否立即执行一次
}

// EventsConfig 事件发布配置
type EventsConfig struct {
	NATS NATSConfig `yaml:"nats" mapstructure:"nats"` // NATS配置
}

// NATSConfig NATS连接配置
type NATSConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`               // 是否启用事件发布
	URL           string        `yaml:"url" mapstructure:"url"`                       // NATS地址
	Name          string        `yaml:"name" mapstructure:"name"`                     // 客户端连接名
	SubjectPrefix string        `yaml:"subject_prefix" mapstructure:"subject_prefix"` // 主题前缀
	MaxReconnects int           `yaml:"max_reconnects" mapstructure:"max_reconnects"` // 最大重连次数
	ReconnectWait time.Duration `yaml:"reconnect_wait" mapstructure:"reconnect_wait"` // 重连间隔
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式: json, text
	Output     string `yaml:"output" mapstructure:"output"`           // 输出方式: stdout, stderr, file
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 保留的日志文件数量
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩日志文件
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`       // 日志中间件配置
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`             // CORS配置
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"` // 限流配置
}

// LoggingConfig 日志中间件配置
type LoggingConfig struct {
	EnableRequestLog     bool          `yaml:"enable_request_log" mapstructure:"enable_request_log"`         // 是否启用请求日志
	SlowRequestThreshold time.Duration `yaml:"slow_request_threshold" mapstructure:"slow_request_threshold"` // 慢请求阈值
	SkipPaths            []string      `yaml:"skip_paths" mapstructure:"skip_paths"`                         // 跳过日志记录的路径
}

// CORSConfig CORS配置
type CORSConfig struct {
	Enabled          bool          `yaml:"enabled" mapstructure:"enabled"`                     // 是否启用CORS
	AllowOrigins     []string      `yaml:"allow_origins" mapstructure:"allow_origins"`         // 允许的源
	AllowMethods     []string      `yaml:"allow_methods" mapstructure:"allow_methods"`         // 允许的方法
	AllowHeaders     []string      `yaml:"allow_headers" mapstructure:"allow_headers"`         // 允许的请求头
	AllowCredentials bool          `yaml:"allow_credentials" mapstructure:"allow_credentials"` // 是否允许凭证
	MaxAge           time.Duration `yaml:"max_age" mapstructure:"max_age"`                     // 预检请求缓存时间
}

// RateLimitConfig 按客户端IP限流配置
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" mapstructure:"enabled"`                         // 是否启用限流
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 每秒允许的请求数
	Burst             int           `yaml:"burst" mapstructure:"burst"`                             // 突发容量
	CleanupInterval   time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`       // 空闲限流器回收间隔
	SkipPaths         []string      `yaml:"skip_paths" mapstructure:"skip_paths"`                   // 不限流的路径
}

// MonitorConfig 监控配置
type MonitorConfig struct {
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"` // 指标监控配置
	Health  HealthConfig  `yaml:"health" mapstructure:"health"`   // 健康检查配置
}

// MetricsConfig 指标监控配置
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`     // 是否启用指标监控
	Path      string `yaml:"path" mapstructure:"path"`           // 指标接口路径
	Namespace string `yaml:"namespace" mapstructure:"namespace"` // 指标命名空间
}

// HealthConfig 健康检查配置
type HealthConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"` // 是否启用健康检查
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`               // 应用名称
	Version     string `yaml:"version" mapstructure:"version"`         // 应用版本
	Environment string `yaml:"environment" mapstructure:"environment"` // 运行环境
	Timezone    string `yaml:"timezone" mapstructure:"timezone"`       // 时区
}

// GetAddress 获取服务器完整地址
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment 判断是否为开发环境
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction 判断是否为生产环境
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// IsTest 判断是否为测试环境
func (a *AppConfig) IsTest() bool {
	return a.Environment == "test"
}

// ServerMode 未显式配置 server.mode 时按运行环境推导 gin 模式
func (a *AppConfig) ServerMode() string {
	switch {
	case a.IsDevelopment():
		return "debug"
	case a.IsTest():
		return "test"
	case a.IsProduction():
		return "release"
	default:
		return "release"
	}
}

// GetMySQLDSN 获取MySQL数据源名称
// 使用 go-sql-driver 的 Config 生成，避免密码中的特殊字符破坏 DSN
func (m *MySQLConfig) GetMySQLDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = m.Username
	cfg.Passwd = m.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", m.Host, m.Port)
	cfg.DBName = m.Database
	cfg.ParseTime = m.ParseTime
	if m.Charset != "" {
		cfg.Params = map[string]string{"charset": m.Charset}
	}
	if m.Loc != "" {
		if loc, err := time.LoadLocation(m.Loc); err == nil {
			cfg.Loc = loc
		}
	}
	return cfg.FormatDSN()
}

// GetRedisAddress 获取Redis地址
func (r *RedisConfig) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
