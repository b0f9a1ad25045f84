/*
 * @date: 2026.10.14
 * @description: Server 子命令，启动 HTTP API 与定时清理
 */

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielolaviobr/ubio/internal/app/server"
	"github.com/danielolaviobr/ubio/internal/config"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// defaultShutdownTimeout 优雅关闭默认超时
const defaultShutdownTimeout = 5 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动心跳服务",
	Long: `启动 HTTP API 与定时过期清理，收到 SIGINT/SIGTERM 后优雅关闭。

日志级别与格式支持热更新，其余配置变更需要重启。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runServer(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cfg *config.Config) error {
	// 创建应用实例
	app, err := server.NewApp(cfg)
	if err != nil {
		return err
	}
	if err := app.Start(); err != nil {
		return err
	}

	watchConfig(cfg)

	// 创建HTTP服务器
	addr := cfg.Server.GetAddress()
	srv := &http.Server{
		Addr:           addr,
		Handler:        app.GetRouter().GetEngine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.LogSystemEvent("server", "start", "Starting server on "+addr, logrus.InfoLevel, map[string]interface{}{
			"store": cfg.Heartbeat.Store,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			app.Stop()
			return err
		}
	}
	logger.LogSystemEvent("server", "shutdown", "Shutting down server...", logrus.InfoLevel, nil)

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownErr := srv.Shutdown(ctx)
	if err := config.StopConfigWatcher(); err != nil {
		logger.Warnf("failed to stop config watcher: %v", err)
	}
	app.Stop()

	if shutdownErr != nil {
		return shutdownErr
	}
	logger.LogSystemEvent("server", "exit", "Server exiting", logrus.InfoLevel, nil)
	return nil
}

// watchConfig 监听配置文件，热更新日志配置
func watchConfig(cfg *config.Config) {
	path := cfgPath
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "_CONFIG_PATH")
	}
	if path == "" {
		path = "configs"
	}

	if err := config.StartConfigWatcher(path, cfgEnv); err != nil {
		logger.Warnf("config watcher disabled: %v", err)
		return
	}
	_ = config.AddConfigReloadCallback(func(oldConfig, newConfig *config.Config) error {
		if config.RestartRequired(oldConfig, newConfig) {
			logger.LogSystemEvent("config", "reload", "Config changed, restart required to apply", logrus.WarnLevel, nil)
		}
		if logLevel != "" {
			newConfig.Log.Level = logLevel
		}
		return logger.LoggerInstance.UpdateConfig(&newConfig.Log)
	})
}
