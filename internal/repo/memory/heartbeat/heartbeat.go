/**
 * 心跳仓库层:内存存储
 * @date: 2026.10.13
 * @description: 心跳数据的内存实现，适合单实例部署和测试(heartbeat.store=memory)
 * @func: 单纯数据访问，不包含业务逻辑；返回值均为拷贝，调用方修改不会影响存储
 */
package heartbeat

import (
	"context"
	"sort"
	"sync"
	"time"

	hbModel "github.com/danielolaviobr/ubio/internal/model/heartbeat"
	"github.com/danielolaviobr/ubio/internal/model/system"
)

// heartbeatKey 业务主键
type heartbeatKey struct {
	group string
	id    string
}

// HeartbeatRepository 内存心跳存储库
type HeartbeatRepository struct {
	records map[heartbeatKey]*hbModel.Heartbeat
	bySID   map[uint64]heartbeatKey
	seq     uint64
	mutex   sync.RWMutex
}

// NewHeartbeatRepository 创建内存心跳存储库实例
func NewHeartbeatRepository() *HeartbeatRepository {
	return &HeartbeatRepository{
		records: make(map[heartbeatKey]*hbModel.Heartbeat),
		bySID:   make(map[uint64]heartbeatKey),
	}
}

// FindOne 查询心跳，不存在时返回 nil, nil
func (r *HeartbeatRepository) FindOne(ctx context.Context, group, id string) (*hbModel.Heartbeat, error) {
	if err := checkContext(ctx, "find_one"); err != nil {
		return nil, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.records[heartbeatKey{group, id}].Clone(), nil
}

// Upsert 创建或刷新心跳
func (r *HeartbeatRepository) Upsert(ctx context.Context, group, id string, meta hbModel.Meta, now time.Time) (*hbModel.Heartbeat, error) {
	if err := checkContext(ctx, "upsert"); err != nil {
		return nil, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := heartbeatKey{group, id}
	hb, ok := r.records[key]
	if !ok {
		r.seq++
		hb = &hbModel.Heartbeat{Group: group, ID: id}
		hb.SurrogateID = r.seq
		hb.CreatedAt = now
		r.records[key] = hb
		r.bySID[hb.SurrogateID] = key
	}
	hb.Status = hbModel.StatusActive
	hb.Meta = meta.Clone()
	if hb.Meta == nil {
		hb.Meta = hbModel.Meta{}
	}
	hb.UpdatedAt = now

	return hb.Clone(), nil
}

// UpdateStatus 更新单条心跳状态，不存在时返回 nil, nil
func (r *HeartbeatRepository) UpdateStatus(ctx context.Context, group, id string, status hbModel.Status, now time.Time) (*hbModel.Heartbeat, error) {
	if err := checkContext(ctx, "update_status"); err != nil {
		return nil, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	hb, ok := r.records[heartbeatKey{group, id}]
	if !ok {
		return nil, nil
	}
	hb.Status = status
	hb.UpdatedAt = now
	return hb.Clone(), nil
}

// ListActive 查询 ACTIVE 心跳，group 为空时查询全部分组
func (r *HeartbeatRepository) ListActive(ctx context.Context, group string) ([]*hbModel.Heartbeat, error) {
	return r.filter(ctx, "list_active", func(hb *hbModel.Heartbeat) bool {
		return hb.Status == hbModel.StatusActive && (group == "" || hb.Group == group)
	})
}

// FindStale 查询 ACTIVE 且 UpdatedAt <= olderThan 的心跳
func (r *HeartbeatRepository) FindStale(ctx context.Context, olderThan time.Time) ([]*hbModel.Heartbeat, error) {
	return r.filter(ctx, "find_stale", func(hb *hbModel.Heartbeat) bool {
		return hb.Status == hbModel.StatusActive && !hb.UpdatedAt.After(olderThan)
	})
}

// BatchUpdateStatus 按代理主键批量更新状态，在一次加锁内完成
// updated_at 取已存值与 now 中较晚者，不会回退
func (r *HeartbeatRepository) BatchUpdateStatus(ctx context.Context, ids []uint64, status hbModel.Status, now time.Time) (int64, error) {
	if err := checkContext(ctx, "batch_update_status"); err != nil {
		return 0, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var affected int64
	for _, sid := range ids {
		key, ok := r.bySID[sid]
		if !ok {
			continue
		}
		hb := r.records[key]
		hb.Status = status
		if now.After(hb.UpdatedAt) {
			hb.UpdatedAt = now
		}
		affected++
	}
	return affected, nil
}

// Ping 内存存储始终可用
func (r *HeartbeatRepository) Ping(ctx context.Context) error {
	return checkContext(ctx, "ping")
}

// checkContext 上下文已取消时按存储不可用处理
func checkContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return system.NewStoreUnavailableError(op, err)
	}
	return nil
}

// filter 按条件筛选，结果按代理主键升序
func (r *HeartbeatRepository) filter(ctx context.Context, op string, match func(*hbModel.Heartbeat) bool) ([]*hbModel.Heartbeat, error) {
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*hbModel.Heartbeat, 0)
	for _, hb := range r.records {
		if match(hb) {
			result = append(result, hb.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SurrogateID < result[j].SurrogateID
	})
	return result, nil
}
