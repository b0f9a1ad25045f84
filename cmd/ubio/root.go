/*
 * @date: 2026.10.14
 * @description: Cobra Root Command 定义
 */

package main

import (
	"fmt"
	"os"

	"github.com/danielolaviobr/ubio/internal/config"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	cfgEnv   string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ubio",
	Short: "ubio 心跳服务",
	Long: `ubio 记录客户端按 (group, id) 上报的心跳，并定期把长时间未刷新的心跳标记为过期。

示例:
  1.启动服务(HTTP API + 定时清理)
	ubio server --config ./configs --env production
  2.建表
	ubio migrate
  3.立即执行一次清理
	ubio sweep --max-age 12h
`,
	SilenceUsage: true,
}

func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n[FATAL] ubio crashed unexpectedly: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// 全局 Flag
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "配置文件目录 (默认: ./configs 或 UBIO_CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&cfgEnv, "env", "", "运行环境 development/test/production (默认: UBIO_ENV)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (debug, info, warn, error)，覆盖配置文件")
}

// loadConfig 加载配置并初始化日志，所有子命令共用
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgPath, cfgEnv)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if _, err := logger.InitLogger(&cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, nil
}
