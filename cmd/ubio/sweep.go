/*
 * @date: 2026.10.14
 * @description: Sweep 子命令，立即执行一次过期清理
 */

package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/danielolaviobr/ubio/internal/app/server/setup"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	sweepMaxAge  time.Duration
	sweepTimeout time.Duration
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "立即执行一次过期清理",
	Long: `把超过 max-age 未刷新的 ACTIVE 心跳标记为 STALE，并打印结果。

示例:
  ubio sweep
  ubio sweep --max-age 12h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if sweepMaxAge > 0 {
			cfg.Sweeper.MaxAge = sweepMaxAge
		}

		infra, err := setup.BuildInfrastructure(cfg)
		if err != nil {
			return err
		}
		defer infra.Close()

		module, err := setup.BuildHeartbeatModule(cfg, infra)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), sweepTimeout)
		defer cancel()

		result, err := module.Scheduler.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}

		return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
			{"run_at", "stale_before", "candidates", "swept"},
			{
				logger.FormatTimestamp(result.RunAt),
				logger.FormatTimestamp(result.StaleBefore),
				strconv.Itoa(result.Candidates),
				strconv.FormatInt(result.Swept, 10),
			},
		}).Render()
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().DurationVar(&sweepMaxAge, "max-age", 0, "心跳最大静默时长，默认使用 sweeper.max_age")
	sweepCmd.Flags().DurationVar(&sweepTimeout, "timeout", time.Minute, "本次清理超时时间")
}
