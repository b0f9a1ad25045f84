package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
server:
  host: "localhost"
  port: 8080
  mode: "test"
  read_timeout: 30s
  write_timeout: 30s
  idle_timeout: 60s
  max_header_bytes: 1048576

database:
  driver: "sqlite"
  mysql:
    host: "localhost"
    port: 3306
    username: "test_user"
    password: "test_password"
    database: "test_db"
    charset: "utf8mb4"
    parse_time: true
    loc: "Local"
  sqlite:
    path: "file::memory:?cache=shared"
    log_level: "silent"
  redis:
    host: "localhost"
    port: 6379
    database: 0

heartbeat:
  store: "database"
  max_key_length: 64

sweeper:
  enabled: true
  schedule: "@hourly"
  max_age: 24h

events:
  nats:
    enabled: false
    url: "nats://127.0.0.1:4222"

log:
  level: "info"
  format: "json"
  output: "stdout"
  file_path: "logs/app.log"

monitor:
  metrics:
    enabled: true
    path: "/metrics"

app:
  name: "ubio-test"
  version: "1.0.0"
  environment: "test"
`

// writeTestConfig 写入临时配置文件
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	return tempDir
}

// TestLoadConfig 测试配置加载功能
func TestLoadConfig(t *testing.T) {
	tempDir := writeTestConfig(t, testConfigContent)

	config, err := LoadConfig(tempDir, "test")
	require.NoError(t, err)

	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "sqlite", config.Database.Driver)
	assert.Equal(t, "test_db", config.Database.MySQL.Database)
	assert.Equal(t, "database", config.Heartbeat.Store)
	assert.Equal(t, 64, config.Heartbeat.MaxKeyLength)
	assert.Equal(t, "@hourly", config.Sweeper.Schedule)
	assert.Equal(t, 24*time.Hour, config.Sweeper.MaxAge)
	assert.Equal(t, "test", config.App.Environment)
	assert.Same(t, config, GetConfig())
}

// TestLoadConfigDefaults 配置文件缺省字段使用默认值
func TestLoadConfigDefaults(t *testing.T) {
	tempDir := writeTestConfig(t, `
server:
  mode: "release"
database:
  driver: "sqlite"
`)

	config, err := LoadConfig(tempDir, "development")
	require.NoError(t, err)

	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "database", config.Heartbeat.Store)
	assert.Equal(t, 128, config.Heartbeat.MaxKeyLength)
	assert.Equal(t, "@hourly", config.Sweeper.Schedule)
	assert.Equal(t, 24*time.Hour, config.Sweeper.MaxAge)
	assert.Equal(t, "heartbeat", config.Events.NATS.SubjectPrefix)
	assert.Equal(t, "/metrics", config.Monitor.Metrics.Path)
	assert.Equal(t, "file::memory:?cache=shared", config.Database.SQLite.Path)
}

// TestLoadConfigServerModeFromEnvironment 未配置 server.mode 时按环境推导
func TestLoadConfigServerModeFromEnvironment(t *testing.T) {
	tests := []struct {
		env  string
		body string
		want string
	}{
		{env: "development", want: "debug"},
		{env: "test", want: "test"},
		{env: "production", want: "release"},
		{env: "staging", want: "release"},
		{env: "test", body: "app:\n  environment: \"production\"\n", want: "release"},
		{env: "production", body: "server:\n  mode: \"debug\"\n", want: "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.want, func(t *testing.T) {
			tempDir := writeTestConfig(t, "database:\n  driver: \"sqlite\"\n"+tt.body)

			config, err := LoadConfig(tempDir, tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, config.Server.Mode)
		})
	}
}

func TestLoadConfigWithEnvVars(t *testing.T) {
	t.Setenv("UBIO_SERVER_PORT", "9090")
	t.Setenv("UBIO_MYSQL_HOST", "env_mysql_host")
	t.Setenv("UBIO_SWEEPER_MAX_AGE", "2h")
	t.Setenv("UBIO_HEARTBEAT_STORE", "memory")

	tempDir := writeTestConfig(t, testConfigContent)

	config, err := LoadConfig(tempDir, "test")
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "env_mysql_host", config.Database.MySQL.Host)
	assert.Equal(t, 2*time.Hour, config.Sweeper.MaxAge)
	assert.Equal(t, "memory", config.Heartbeat.Store)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir(), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func validTestConfig() *Config {
	return &Config{
		Server:    ServerConfig{Host: "localhost", Port: 8080, Mode: "debug"},
		Database:  DatabaseConfig{Driver: "mysql", MySQL: MySQLConfig{Host: "localhost", Database: "ubio"}},
		Heartbeat: HeartbeatConfig{Store: "database", MaxKeyLength: 128},
		Sweeper:   SweeperConfig{Enabled: true, Schedule: "@hourly", MaxAge: 24 * time.Hour},
		Log:       LogConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 70000 }, errorMsg: "invalid server port"},
		{name: "invalid mode", mutate: func(c *Config) { c.Server.Mode = "prod" }, errorMsg: "invalid server mode"},
		{name: "invalid store", mutate: func(c *Config) { c.Heartbeat.Store = "mongo" }, errorMsg: "invalid heartbeat store"},
		{name: "invalid driver", mutate: func(c *Config) { c.Database.Driver = "postgres" }, errorMsg: "invalid database driver"},
		{name: "missing mysql host", mutate: func(c *Config) { c.Database.MySQL.Host = "" }, errorMsg: "mysql host is required"},
		{name: "redis store without host", mutate: func(c *Config) { c.Heartbeat.Store = "redis" }, errorMsg: "redis host is required"},
		{name: "memory store skips database checks", mutate: func(c *Config) {
			c.Heartbeat.Store = "memory"
			c.Database.Driver = ""
		}},
		{name: "zero max age", mutate: func(c *Config) { c.Sweeper.MaxAge = 0 }, errorMsg: "invalid sweeper max_age"},
		{name: "bad schedule", mutate: func(c *Config) { c.Sweeper.Schedule = "every hour" }, errorMsg: "invalid sweeper schedule"},
		{name: "bad schedule ignored when disabled", mutate: func(c *Config) {
			c.Sweeper.Enabled = false
			c.Sweeper.Schedule = "every hour"
		}},
		{name: "nats without url", mutate: func(c *Config) { c.Events.NATS.Enabled = true }, errorMsg: "nats url is required"},
		{name: "invalid log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, errorMsg: "invalid log level"},
		{name: "file output without path", mutate: func(c *Config) { c.Log.Output = "file" }, errorMsg: "log file path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.errorMsg), "unexpected error: %v", err)
		})
	}
}

func TestGetMySQLDSN(t *testing.T) {
	m := &MySQLConfig{
		Host:      "db.local",
		Port:      3306,
		Username:  "ubio",
		Password:  "p@ss:word",
		Database:  "heartbeats",
		Charset:   "utf8mb4",
		ParseTime: true,
		Loc:       "UTC",
	}

	dsn := m.GetMySQLDSN()
	assert.True(t, strings.HasPrefix(dsn, "ubio:p@ss:word@tcp(db.local:3306)/heartbeats?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestGetConfigFileName(t *testing.T) {
	tempDir := writeTestConfig(t, testConfigContent)

	// 缺少 config.test.yaml 时回落到 config.yaml
	assert.Equal(t, filepath.Join(tempDir, "config.yaml"), getConfigFileName(tempDir, "test"))

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.prod.yaml"), []byte(testConfigContent), 0644))
	assert.Equal(t, filepath.Join(tempDir, "config.prod.yaml"), getConfigFileName(tempDir, "production"))
}

func TestRestartRequired(t *testing.T) {
	oldCfg := validTestConfig()
	newCfg := validTestConfig()
	assert.False(t, RestartRequired(oldCfg, newCfg))

	newCfg.Log.Level = "debug"
	assert.False(t, RestartRequired(oldCfg, newCfg))

	newCfg.Sweeper.MaxAge = time.Hour
	assert.True(t, RestartRequired(oldCfg, newCfg))
	assert.False(t, RestartRequired(nil, newCfg))
}
