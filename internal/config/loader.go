package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "UBIO"

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置文件
// configPath: 配置文件路径，如果为空则使用默认路径
// env: 环境标识，支持 development, test, production
func LoadConfig(configPath, env string) (*Config, error) {
	// 设置默认环境
	if env == "" {
		env = getEnvFromEnvironment()
	}

	// 创建viper实例
	v := viper.New()

	// 设置配置文件类型
	v.SetConfigType("yaml")

	// 设置配置文件路径
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 根据环境选择配置文件
	configFile := getConfigFileName(configPath, env)
	v.SetConfigFile(configFile)

	// 设置环境变量前缀
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 默认值
	setDefaults(v)
	v.SetDefault("app.environment", env)

	// 绑定环境变量
	bindEnvironmentVariables(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	// 解析配置到结构体
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if config.Server.Mode == "" {
		config.Server.Mode = config.App.ServerMode()
	}

	// 验证配置
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 设置全局配置
	GlobalConfig = &config

	return &config, nil
}

// getEnvFromEnvironment 从环境变量获取环境标识
func getEnvFromEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development" // 默认开发环境
	}
	return env
}

// getDefaultConfigPath 获取默认配置文件路径
func getDefaultConfigPath() string {
	// 尝试从环境变量获取配置路径
	if configPath := os.Getenv(EnvPrefix + "_CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// 使用默认路径
	return "configs"
}

// getConfigFileName 根据环境获取配置文件名
func getConfigFileName(configPath, env string) string {
	var configFile string

	switch env {
	case "production", "prod":
		configFile = filepath.Join(configPath, "config.prod.yaml")
	case "test", "testing":
		configFile = filepath.Join(configPath, "config.test.yaml")
	default:
		configFile = filepath.Join(configPath, "config.yaml")
	}

	// 检查文件是否存在，如果不存在则使用默认配置文件
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := filepath.Join(configPath, "config.yaml")
		if _, err := os.Stat(defaultConfig); err == nil {
			return defaultConfig
		}
	}

	return configFile
}

// setDefaults 设置默认值，配置文件缺省时生效
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.sqlite.path", "file::memory:?cache=shared")
	v.SetDefault("database.redis.key_prefix", "ubio")

	v.SetDefault("heartbeat.store", "database")
	v.SetDefault("heartbeat.max_key_length", 128)

	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.schedule", "@hourly")
	v.SetDefault("sweeper.max_age", 24*time.Hour)

	v.SetDefault("events.nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("events.nats.name", "ubio")
	v.SetDefault("events.nats.subject_prefix", "heartbeat")
	v.SetDefault("events.nats.max_reconnects", 10)
	v.SetDefault("events.nats.reconnect_wait", 2*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("security.rate_limit.requests_per_second", 50)
	v.SetDefault("security.rate_limit.burst", 100)
	v.SetDefault("security.rate_limit.cleanup_interval", 10*time.Minute)

	v.SetDefault("monitor.metrics.path", "/metrics")
	v.SetDefault("monitor.metrics.namespace", "ubio")
	v.SetDefault("monitor.health.enabled", true)
}

// bindEnvironmentVariables 绑定环境变量
func bindEnvironmentVariables(v *viper.Viper) {
	// 数据库配置
	v.BindEnv("database.driver", EnvPrefix+"_DATABASE_DRIVER")
	v.BindEnv("database.mysql.host", EnvPrefix+"_MYSQL_HOST")
	v.BindEnv("database.mysql.port", EnvPrefix+"_MYSQL_PORT")
	v.BindEnv("database.mysql.username", EnvPrefix+"_MYSQL_USERNAME")
	v.BindEnv("database.mysql.password", EnvPrefix+"_MYSQL_PASSWORD")
	v.BindEnv("database.mysql.database", EnvPrefix+"_MYSQL_DATABASE")
	v.BindEnv("database.sqlite.path", EnvPrefix+"_SQLITE_PATH")

	v.BindEnv("database.redis.host", EnvPrefix+"_REDIS_HOST")
	v.BindEnv("database.redis.port", EnvPrefix+"_REDIS_PORT")
	v.BindEnv("database.redis.password", EnvPrefix+"_REDIS_PASSWORD")
	v.BindEnv("database.redis.database", EnvPrefix+"_REDIS_DATABASE")

	// 心跳与清理任务
	v.BindEnv("heartbeat.store", EnvPrefix+"_HEARTBEAT_STORE")
	v.BindEnv("sweeper.enabled", EnvPrefix+"_SWEEPER_ENABLED")
	v.BindEnv("sweeper.schedule", EnvPrefix+"_SWEEPER_SCHEDULE")
	v.BindEnv("sweeper.max_age", EnvPrefix+"_SWEEPER_MAX_AGE")

	// 事件发布
	v.BindEnv("events.nats.enabled", EnvPrefix+"_NATS_ENABLED")
	v.BindEnv("events.nats.url", EnvPrefix+"_NATS_URL")

	// 服务器配置
	v.BindEnv("server.host", EnvPrefix+"_SERVER_HOST")
	v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT")
	v.BindEnv("server.mode", EnvPrefix+"_SERVER_MODE")

	// 应用配置
	v.BindEnv("app.environment", EnvPrefix+"_APP_ENVIRONMENT")
	v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL")
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	// 验证服务器配置
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.Mode != "debug" && config.Server.Mode != "release" && config.Server.Mode != "test" {
		return fmt.Errorf("invalid server mode: %s", config.Server.Mode)
	}

	// 验证存储配置
	validStores := []string{"database", "redis", "memory"}
	if !contains(validStores, config.Heartbeat.Store) {
		return fmt.Errorf("invalid heartbeat store: %s", config.Heartbeat.Store)
	}

	if config.Heartbeat.Store == "database" {
		validDrivers := []string{"mysql", "sqlite"}
		if !contains(validDrivers, config.Database.Driver) {
			return fmt.Errorf("invalid database driver: %s", config.Database.Driver)
		}
		if config.Database.Driver == "mysql" {
			if config.Database.MySQL.Host == "" {
				return fmt.Errorf("mysql host is required")
			}
			if config.Database.MySQL.Database == "" {
				return fmt.Errorf("mysql database name is required")
			}
		}
		if config.Database.Driver == "sqlite" && config.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	}

	if config.Heartbeat.Store == "redis" && config.Database.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}

	if config.Heartbeat.MaxKeyLength <= 0 {
		return fmt.Errorf("invalid heartbeat max_key_length: %d", config.Heartbeat.MaxKeyLength)
	}

	// 验证清理任务配置
	if config.Sweeper.MaxAge <= 0 {
		return fmt.Errorf("invalid sweeper max_age: %s", config.Sweeper.MaxAge)
	}
	if config.Sweeper.Enabled {
		if _, err := cron.ParseStandard(config.Sweeper.Schedule); err != nil {
			return fmt.Errorf("invalid sweeper schedule %q: %w", config.Sweeper.Schedule, err)
		}
	}

	if config.Events.NATS.Enabled && config.Events.NATS.URL == "" {
		return fmt.Errorf("nats url is required when events are enabled")
	}

	if config.Security.RateLimit.Enabled && (config.Security.RateLimit.RequestsPerSecond <= 0 || config.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive requests_per_second and burst")
	}

	// 验证日志配置
	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLogLevels, config.Log.Level) {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Log.Format) {
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}

	validLogOutputs := []string{"stdout", "stderr", "file"}
	if !contains(validLogOutputs, config.Log.Output) {
		return fmt.Errorf("invalid log output: %s", config.Log.Output)
	}

	// 如果日志输出到文件，验证文件路径
	if config.Log.Output == "file" && config.Log.FilePath == "" {
		return fmt.Errorf("log file path is required when output is file")
	}

	return nil
}

// contains 检查切片是否包含指定元素
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return GlobalConfig
}
