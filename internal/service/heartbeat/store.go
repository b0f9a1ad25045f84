/**
 * 心跳服务层:存储契约
 * @date: 2026.10.13
 * @description: 生命周期引擎与过期清理依赖的存储接口
 * 时间戳由服务层传入，存储原样保存；所有存储失败均以 StoreUnavailable 错误返回
 */
package heartbeat

import (
	"context"
	"time"

	hbModel "github.com/danielolaviobr/ubio/internal/model/heartbeat"
)

// HeartbeatStore 心跳存储接口
// 实现: repo/mysql/heartbeat(GORM)、repo/redis/heartbeat、repo/memory/heartbeat
type HeartbeatStore interface {
	// FindOne 根据 group + id 查询，不存在时返回 nil, nil
	FindOne(ctx context.Context, group, id string) (*hbModel.Heartbeat, error)
	// Upsert 不存在时创建 ACTIVE 记录；存在时置为 ACTIVE、整体替换 meta、更新 updated_at
	Upsert(ctx context.Context, group, id string, meta hbModel.Meta, now time.Time) (*hbModel.Heartbeat, error)
	// UpdateStatus 更新单条记录状态，meta 不变；不存在时返回 nil, nil
	UpdateStatus(ctx context.Context, group, id string, status hbModel.Status, now time.Time) (*hbModel.Heartbeat, error)
	// ListActive 查询 ACTIVE 记录，group 为空表示全部分组，按代理主键排序
	ListActive(ctx context.Context, group string) ([]*hbModel.Heartbeat, error)
	// FindStale 查询 status = ACTIVE 且 updated_at <= olderThan 的记录
	FindStale(ctx context.Context, olderThan time.Time) ([]*hbModel.Heartbeat, error)
	// BatchUpdateStatus 按代理主键一次性批量更新状态，返回存储确认的更新数量
	BatchUpdateStatus(ctx context.Context, ids []uint64, status hbModel.Status, now time.Time) (int64, error)
}

// Pinger 存储连通性检查，用于就绪探针
type Pinger interface {
	Ping(ctx context.Context) error
}
