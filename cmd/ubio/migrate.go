/*
 * @date: 2026.10.14
 * @description: Migrate 子命令，为 SQL 存储建表
 */

package main

import (
	"fmt"

	"github.com/danielolaviobr/ubio/internal/pkg/database"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var migrateDrop bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或更新心跳表",
	Long:  "对 database.driver 指定的数据库执行 AutoMigrate，仅在 heartbeat.store=database 时有意义。",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Heartbeat.Store != "database" {
			return fmt.Errorf("migrate requires heartbeat.store=database, got %q", cfg.Heartbeat.Store)
		}

		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if migrateDrop {
			if err := database.DropTables(db); err != nil {
				return err
			}
			pterm.Warning.Printfln("heartbeats table dropped")
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		pterm.Success.Printfln("heartbeats table migrated (%s)", cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&migrateDrop, "drop", false, "迁移前先删除心跳表(危险操作)")
}
