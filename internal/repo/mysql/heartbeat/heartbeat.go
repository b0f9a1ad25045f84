/**
 * 心跳仓库层:关系型存储
 * @date: 2026.10.13
 * @description: 基于 GORM 的心跳数据访问，生产环境使用 MySQL，单机部署与测试使用 SQLite
 * @func: 单纯数据访问，不包含状态流转等业务逻辑；时间戳由服务层传入，统一转为 UTC 落库
 * @note: SQLite 以文本保存时间，比较依赖统一的时区
 */
package heartbeat

import (
	"context"
	"errors"
	"time"

	hbModel "github.com/danielolaviobr/ubio/internal/model/heartbeat"
	"github.com/danielolaviobr/ubio/internal/model/system"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HeartbeatRepository 心跳仓库(GORM)
type HeartbeatRepository struct {
	db *gorm.DB
}

// NewHeartbeatRepository 创建心跳仓库实例
func NewHeartbeatRepository(db *gorm.DB) *HeartbeatRepository {
	return &HeartbeatRepository{db: db}
}

// FindOne 根据 group + id 查询心跳，不存在时返回 nil, nil
func (r *HeartbeatRepository) FindOne(ctx context.Context, group, id string) (*hbModel.Heartbeat, error) {
	var hb hbModel.Heartbeat
	err := r.db.WithContext(ctx).
		Where("group_name = ? AND heartbeat_id = ?", group, id).
		First(&hb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, system.NewStoreUnavailableError("find_one", err)
	}
	return &hb, nil
}

// Upsert 创建或刷新心跳
// 不存在时创建 ACTIVE 记录(created_at = updated_at = now)；
// 已存在时状态置为 ACTIVE，整体替换 meta，updated_at = now，created_at 保持不变
func (r *HeartbeatRepository) Upsert(ctx context.Context, group, id string, meta hbModel.Meta, now time.Time) (*hbModel.Heartbeat, error) {
	if meta == nil {
		meta = hbModel.Meta{}
	}
	now = now.UTC()
	hb := &hbModel.Heartbeat{
		Group:  group,
		ID:     id,
		Status: hbModel.StatusActive,
		Meta:   meta,
	}
	hb.CreatedAt = now
	hb.UpdatedAt = now

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_name"}, {Name: "heartbeat_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "meta", "updated_at"}),
		}).
		Create(hb).Error
	if err != nil {
		return nil, system.NewStoreUnavailableError("upsert", err)
	}

	logger.WithFields(logrus.Fields{
		"path":      "repo.heartbeat.Upsert",
		"operation": "upsert",
		"group":     group,
		"id":        id,
	}).Debug("heartbeat upserted")

	// 冲突更新时驱动返回的自增ID不可靠，重新读取一次得到完整记录
	stored, err := r.FindOne(ctx, group, id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, system.NewStoreUnavailableError("upsert", errors.New("record missing after upsert"))
	}
	return stored, nil
}

// UpdateStatus 更新单条心跳状态，meta 保持不变；记录不存在时返回 nil, nil
func (r *HeartbeatRepository) UpdateStatus(ctx context.Context, group, id string, status hbModel.Status, now time.Time) (*hbModel.Heartbeat, error) {
	now = now.UTC()
	result := r.db.WithContext(ctx).Model(&hbModel.Heartbeat{}).
		Where("group_name = ? AND heartbeat_id = ?", group, id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": now,
		})
	if result.Error != nil {
		return nil, system.NewStoreUnavailableError("update_status", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	logger.WithFields(logrus.Fields{
		"path":      "repo.heartbeat.UpdateStatus",
		"operation": "update_status",
		"group":     group,
		"id":        id,
		"status":    status,
	}).Info("heartbeat status updated")

	return r.FindOne(ctx, group, id)
}

// ListActive 查询 ACTIVE 心跳，group 为空时查询全部分组
func (r *HeartbeatRepository) ListActive(ctx context.Context, group string) ([]*hbModel.Heartbeat, error) {
	var heartbeats []*hbModel.Heartbeat
	query := r.db.WithContext(ctx).Where("status = ?", hbModel.StatusActive)
	if group != "" {
		query = query.Where("group_name = ?", group)
	}
	if err := query.Order("surrogate_id asc").Find(&heartbeats).Error; err != nil {
		return nil, system.NewStoreUnavailableError("list_active", err)
	}
	return heartbeats, nil
}

// FindStale 查询 ACTIVE 且 updated_at <= olderThan 的心跳
func (r *HeartbeatRepository) FindStale(ctx context.Context, olderThan time.Time) ([]*hbModel.Heartbeat, error) {
	var heartbeats []*hbModel.Heartbeat
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at <= ?", hbModel.StatusActive, olderThan.UTC()).
		Order("surrogate_id asc").
		Find(&heartbeats).Error
	if err != nil {
		return nil, system.NewStoreUnavailableError("find_stale", err)
	}
	return heartbeats, nil
}

// BatchUpdateStatus 按代理主键批量更新状态，单条 UPDATE 语句完成，返回受影响行数
// updated_at 取已存值与 now 中较晚者，查询与写入之间被刷新的记录时间戳不会回退
func (r *HeartbeatRepository) BatchUpdateStatus(ctx context.Context, ids []uint64, status hbModel.Status, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	now = now.UTC()

	result := r.db.WithContext(ctx).Model(&hbModel.Heartbeat{}).
		Where("surrogate_id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": gorm.Expr("CASE WHEN updated_at > ? THEN updated_at ELSE ? END", now, now),
		})
	if result.Error != nil {
		return 0, system.NewStoreUnavailableError("batch_update_status", result.Error)
	}

	logger.WithFields(logrus.Fields{
		"path":          "repo.heartbeat.BatchUpdateStatus",
		"operation":     "batch_update_status",
		"surrogate_ids": ids,
		"status":        status,
		"affected":      result.RowsAffected,
	}).Info("heartbeat batch status updated")

	return result.RowsAffected, nil
}

// Ping 检查数据库连接
func (r *HeartbeatRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return system.NewStoreUnavailableError("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return system.NewStoreUnavailableError("ping", err)
	}
	return nil
}
