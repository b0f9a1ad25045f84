/**
 * 数据库:连接管理
 * @date: 2026.10.12
 * @description: 按配置选择 gorm 驱动创建连接，并负责表结构迁移
 * @func:
 *   - NewConnection 根据 database.driver 创建连接
 *   - AutoMigrate 迁移心跳表
 *   - DropTables 删除心跳表(危险操作，仅 migrate --drop 使用)
 *   - Close 关闭连接
 */
package database

import (
	"fmt"

	"github.com/danielolaviobr/ubio/internal/config"
	hbModel "github.com/danielolaviobr/ubio/internal/model/heartbeat"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	// DriverMySQL MySQL驱动
	DriverMySQL = "mysql"
	// DriverSQLite SQLite驱动
	DriverSQLite = "sqlite"
)

// NewConnection 根据配置的驱动创建数据库连接
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case DriverMySQL, "":
		return NewMySQLConnection(&cfg.MySQL)
	case DriverSQLite:
		return NewSQLiteConnection(&cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// AutoMigrate 迁移心跳相关表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&hbModel.Heartbeat{}); err != nil {
		return fmt.Errorf("failed to migrate heartbeat table: %w", err)
	}
	return nil
}

// DropTables 删除心跳相关表
func DropTables(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&hbModel.Heartbeat{}); err != nil {
		return fmt.Errorf("failed to drop heartbeat table: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newGormLogger 配置GORM日志级别
func newGormLogger(level string) gormlogger.Interface {
	var logLevel gormlogger.LogLevel
	switch level {
	case "silent":
		logLevel = gormlogger.Silent
	case "error":
		logLevel = gormlogger.Error
	case "warn":
		logLevel = gormlogger.Warn
	case "info":
		logLevel = gormlogger.Info
	default:
		logLevel = gormlogger.Warn
	}
	return gormlogger.Default.LogMode(logLevel)
}
