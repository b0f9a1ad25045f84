/**
 * 心跳仓库层:Redis存储
 * @date: 2026.10.13
 * @description: 心跳数据的 Redis 实现，适合多实例部署
 * @func: 单纯数据访问，不包含业务逻辑
 * @note: 键布局
 *   {prefix}:hb:rec:{group}:{id}   心跳记录(JSON)
 *   {prefix}:hb:seq                代理主键序列(INCR)
 *   {prefix}:hb:sid                代理主键 -> 记录键(Hash)
 *   {prefix}:hb:active             ACTIVE 索引(ZSet, score = updated_at 毫秒)
 *   {prefix}:hb:active:{group}     分组 ACTIVE 索引(ZSet)
 */
package heartbeat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	hbModel "github.com/danielolaviobr/ubio/internal/model/heartbeat"
	"github.com/danielolaviobr/ubio/internal/model/system"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// maxTxAttempts WATCH 事务冲突时的最大尝试次数
const maxTxAttempts = 5

// record Redis 中保存的心跳记录
type record struct {
	SurrogateID uint64         `json:"surrogate_id"`
	Group       string         `json:"group"`
	ID          string         `json:"id"`
	Status      hbModel.Status `json:"status"`
	Meta        hbModel.Meta   `json:"meta"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (rec *record) toModel() *hbModel.Heartbeat {
	hb := &hbModel.Heartbeat{
		Group:  rec.Group,
		ID:     rec.ID,
		Status: rec.Status,
		Meta:   rec.Meta,
	}
	hb.SurrogateID = rec.SurrogateID
	hb.CreatedAt = rec.CreatedAt
	hb.UpdatedAt = rec.UpdatedAt
	return hb
}

// HeartbeatRepository Redis心跳存储库
type HeartbeatRepository struct {
	client *redis.Client
	prefix string
}

// NewHeartbeatRepository 创建Redis心跳存储库实例
func NewHeartbeatRepository(client *redis.Client, keyPrefix string) *HeartbeatRepository {
	if keyPrefix == "" {
		keyPrefix = "ubio"
	}
	return &HeartbeatRepository{
		client: client,
		prefix: keyPrefix + ":hb",
	}
}

// FindOne 查询心跳，不存在时返回 nil, nil
func (r *HeartbeatRepository) FindOne(ctx context.Context, group, id string) (*hbModel.Heartbeat, error) {
	rec, err := r.get(ctx, r.client, r.recordKey(group, id))
	if err != nil {
		return nil, system.NewStoreUnavailableError("find_one", err)
	}
	if rec == nil {
		return nil, nil
	}
	return rec.toModel(), nil
}

// Upsert 创建或刷新心跳
func (r *HeartbeatRepository) Upsert(ctx context.Context, group, id string, meta hbModel.Meta, now time.Time) (*hbModel.Heartbeat, error) {
	if meta == nil {
		meta = hbModel.Meta{}
	}
	key := r.recordKey(group, id)

	var stored *record
	err := r.watch(ctx, func(tx *redis.Tx) error {
		rec, err := r.get(ctx, tx, key)
		if err != nil {
			return err
		}
		if rec == nil {
			sid, err := tx.Incr(ctx, r.seqKey()).Result()
			if err != nil {
				return fmt.Errorf("failed to allocate surrogate id: %w", err)
			}
			rec = &record{
				SurrogateID: uint64(sid),
				Group:       group,
				ID:          id,
				CreatedAt:   now,
			}
		}
		rec.Status = hbModel.StatusActive
		rec.Meta = meta
		rec.UpdatedAt = now

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal heartbeat: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.HSet(ctx, r.sidKey(), strconv.FormatUint(rec.SurrogateID, 10), key)
			r.indexActive(ctx, pipe, rec, key)
			return nil
		})
		if err != nil {
			return err
		}
		stored = rec
		return nil
	}, key)
	if err != nil {
		return nil, system.NewStoreUnavailableError("upsert", err)
	}

	logger.WithFields(logrus.Fields{
		"path":      "repo.redis.heartbeat.Upsert",
		"operation": "upsert",
		"group":     group,
		"id":        id,
	}).Debug("heartbeat upserted")

	return stored.toModel(), nil
}

// UpdateStatus 更新单条心跳状态，不存在时返回 nil, nil
func (r *HeartbeatRepository) UpdateStatus(ctx context.Context, group, id string, status hbModel.Status, now time.Time) (*hbModel.Heartbeat, error) {
	key := r.recordKey(group, id)

	var stored *record
	err := r.watch(ctx, func(tx *redis.Tx) error {
		rec, err := r.get(ctx, tx, key)
		if err != nil || rec == nil {
			return err
		}
		rec.Status = status
		rec.UpdatedAt = now

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal heartbeat: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			r.indexActive(ctx, pipe, rec, key)
			return nil
		})
		if err != nil {
			return err
		}
		stored = rec
		return nil
	}, key)
	if err != nil {
		return nil, system.NewStoreUnavailableError("update_status", err)
	}
	if stored == nil {
		return nil, nil
	}

	logger.WithFields(logrus.Fields{
		"path":      "repo.redis.heartbeat.UpdateStatus",
		"operation": "update_status",
		"group":     group,
		"id":        id,
		"status":    status,
	}).Info("heartbeat status updated")

	return stored.toModel(), nil
}

// ListActive 查询 ACTIVE 心跳，group 为空时查询全部分组
func (r *HeartbeatRepository) ListActive(ctx context.Context, group string) ([]*hbModel.Heartbeat, error) {
	index := r.activeKey()
	if group != "" {
		index = r.groupActiveKey(group)
	}

	keys, err := r.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, system.NewStoreUnavailableError("list_active", err)
	}

	records, err := r.mget(ctx, r.client, keys)
	if err != nil {
		return nil, system.NewStoreUnavailableError("list_active", err)
	}

	result := make([]*hbModel.Heartbeat, 0, len(records))
	for _, rec := range records {
		if rec != nil && rec.Status == hbModel.StatusActive && (group == "" || rec.Group == group) {
			result = append(result, rec.toModel())
		}
	}
	sortBySurrogateID(result)
	return result, nil
}

// FindStale 查询 ACTIVE 且 UpdatedAt <= olderThan 的心跳
func (r *HeartbeatRepository) FindStale(ctx context.Context, olderThan time.Time) ([]*hbModel.Heartbeat, error) {
	keys, err := r.client.ZRangeByScore(ctx, r.activeKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(olderThan.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, system.NewStoreUnavailableError("find_stale", err)
	}

	records, err := r.mget(ctx, r.client, keys)
	if err != nil {
		return nil, system.NewStoreUnavailableError("find_stale", err)
	}

	result := make([]*hbModel.Heartbeat, 0, len(records))
	for _, rec := range records {
		if rec != nil && rec.Status == hbModel.StatusActive && !rec.UpdatedAt.After(olderThan) {
			result = append(result, rec.toModel())
		}
	}
	sortBySurrogateID(result)
	return result, nil
}

// BatchUpdateStatus 按代理主键批量更新状态，所有写入在一个 MULTI/EXEC 中完成
// updated_at 取已存值与 now 中较晚者，不会回退
func (r *HeartbeatRepository) BatchUpdateStatus(ctx context.Context, ids []uint64, status hbModel.Status, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	fields := make([]string, 0, len(ids))
	for _, sid := range ids {
		fields = append(fields, strconv.FormatUint(sid, 10))
	}
	values, err := r.client.HMGet(ctx, r.sidKey(), fields...).Result()
	if err != nil {
		return 0, system.NewStoreUnavailableError("batch_update_status", err)
	}

	wanted := make(map[string]uint64, len(ids))
	keys := make([]string, 0, len(ids))
	for i, v := range values {
		key, ok := v.(string)
		if !ok {
			continue
		}
		wanted[key] = ids[i]
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	var affected int64
	err = r.watch(ctx, func(tx *redis.Tx) error {
		affected = 0
		records, err := r.mget(ctx, tx, keys)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, rec := range records {
				if rec == nil || rec.SurrogateID != wanted[keys[i]] {
					continue
				}
				rec.Status = status
				if now.After(rec.UpdatedAt) {
					rec.UpdatedAt = now
				}
				data, err := json.Marshal(rec)
				if err != nil {
					return fmt.Errorf("failed to marshal heartbeat: %w", err)
				}
				pipe.Set(ctx, keys[i], data, 0)
				r.indexActive(ctx, pipe, rec, keys[i])
				affected++
			}
			return nil
		})
		return err
	}, keys...)
	if err != nil {
		return 0, system.NewStoreUnavailableError("batch_update_status", err)
	}

	logger.WithFields(logrus.Fields{
		"path":          "repo.redis.heartbeat.BatchUpdateStatus",
		"operation":     "batch_update_status",
		"surrogate_ids": ids,
		"status":        status,
		"affected":      affected,
	}).Info("heartbeat batch status updated")

	return affected, nil
}

// Ping 检查Redis连接
func (r *HeartbeatRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return system.NewStoreUnavailableError("ping", err)
	}
	return nil
}

// watch 乐观锁事务，键被并发修改时重试
func (r *HeartbeatRepository) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = r.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("transaction aborted after %d attempts: %w", maxTxAttempts, err)
}

// indexActive 根据状态维护 ACTIVE 索引
func (r *HeartbeatRepository) indexActive(ctx context.Context, pipe redis.Pipeliner, rec *record, key string) {
	if rec.Status == hbModel.StatusActive {
		member := &redis.Z{Score: float64(rec.UpdatedAt.UnixMilli()), Member: key}
		pipe.ZAdd(ctx, r.activeKey(), member)
		pipe.ZAdd(ctx, r.groupActiveKey(rec.Group), member)
		return
	}
	pipe.ZRem(ctx, r.activeKey(), key)
	pipe.ZRem(ctx, r.groupActiveKey(rec.Group), key)
}

// get 读取单条记录，不存在时返回 nil, nil
func (r *HeartbeatRepository) get(ctx context.Context, c redis.Cmdable, key string) (*record, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecord(key, data)
}

// mget 批量读取记录，结果与 keys 一一对应，不存在的位置为 nil
func (r *HeartbeatRepository) mget(ctx context.Context, c redis.Cmdable, keys []string) ([]*record, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	records := make([]*record, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		rec, err := decodeRecord(keys[i], []byte(s))
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

// decodeRecord 解析记录，状态值非法视为数据损坏
func decodeRecord(key string, data []byte) (*record, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal heartbeat %s: %w", key, err)
	}
	if !rec.Status.IsValid() {
		return nil, fmt.Errorf("heartbeat %s has invalid status %q", key, rec.Status)
	}
	return &rec, nil
}

func (r *HeartbeatRepository) recordKey(group, id string) string {
	return fmt.Sprintf("%s:rec:%s:%s", r.prefix, url.QueryEscape(group), url.QueryEscape(id))
}

func (r *HeartbeatRepository) seqKey() string { return r.prefix + ":seq" }

func (r *HeartbeatRepository) sidKey() string { return r.prefix + ":sid" }

func (r *HeartbeatRepository) activeKey() string { return r.prefix + ":active" }

func (r *HeartbeatRepository) groupActiveKey(group string) string {
	return r.prefix + ":active:" + url.QueryEscape(group)
}

func sortBySurrogateID(heartbeats []*hbModel.Heartbeat) {
	sort.Slice(heartbeats, func(i, j int) bool {
		return heartbeats[i].SurrogateID < heartbeats[j].SurrogateID
	})
}
