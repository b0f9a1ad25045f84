/**
 * 模型:心跳
 * @date: 2026.10.12
 * @description: 心跳记录模型、状态枚举与对外视图
 * @func:
 *   - Heartbeat 心跳记录(GORM模型)
 *   - HeartbeatView 对外视图(不包含代理主键)
 *   - RefreshRequest 刷新请求体
 */
package heartbeat

import (
	"time"

	basemodel "github.com/danielolaviobr/ubio/internal/model/basemodel"
)

// Status 心跳状态
type Status string

const (
	// StatusActive 活跃
	StatusActive Status = "ACTIVE"
	// StatusStale 过期(长时间未刷新)，再次刷新即可恢复为 ACTIVE
	StatusStale Status = "STALE"
	// StatusDeleted 已删除，终态，刷新路径无法恢复
	StatusDeleted Status = "DELETED"
)

// IsValid 判断状态值是否合法
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusStale, StatusDeleted:
		return true
	}
	return false
}

// Meta 心跳元数据，对服务层不透明，每次刷新整体替换
type Meta map[string]interface{}

// Clone 拷贝第一层键值，nil 保持为 nil
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	cp := make(Meta, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Heartbeat 心跳记录
// (group, id) 联合唯一，包括已删除的记录
type Heartbeat struct {
	basemodel.BaseModel
	Group  string `json:"group" gorm:"column:group_name;size:128;not null;uniqueIndex:uk_heartbeat_group_id,priority:1;comment:心跳分组"`
	ID     string `json:"id" gorm:"column:heartbeat_id;size:128;not null;uniqueIndex:uk_heartbeat_group_id,priority:2;comment:心跳ID"`
	Status Status `json:"status" gorm:"column:status;size:16;not null;default:ACTIVE;index;comment:状态 ACTIVE/STALE/DELETED"`
	Meta   Meta   `json:"meta" gorm:"column:meta;serializer:json;type:json;comment:元数据(JSON)"`
}

// TableName 表名
func (Heartbeat) TableName() string {
	return "heartbeats"
}

// View 转换为对外视图
func (h *Heartbeat) View() *HeartbeatView {
	if h == nil {
		return nil
	}
	meta := h.Meta
	if meta == nil {
		meta = Meta{}
	}
	return &HeartbeatView{
		Group:     h.Group,
		ID:        h.ID,
		Status:    h.Status,
		Meta:      meta,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

// Clone 深拷贝一份记录(Meta 只拷贝第一层)
func (h *Heartbeat) Clone() *Heartbeat {
	if h == nil {
		return nil
	}
	cp := *h
	cp.Meta = h.Meta.Clone()
	return &cp
}

// HeartbeatView 对外暴露的心跳视图，不包含代理主键
type HeartbeatView struct {
	Group     string    `json:"group"`
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Meta      Meta      `json:"meta"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshRequest 创建/刷新心跳请求体
type RefreshRequest struct {
	Meta Meta `json:"meta"`
}

// SurrogateIDs 提取代理主键列表
func SurrogateIDs(heartbeats []*Heartbeat) []uint64 {
	ids := make([]uint64, 0, len(heartbeats))
	for _, hb := range heartbeats {
		ids = append(ids, hb.SurrogateID)
	}
	return ids
}

// Views 批量转换为对外视图
func Views(heartbeats []*Heartbeat) []*HeartbeatView {
	views := make([]*HeartbeatView, 0, len(heartbeats))
	for _, hb := range heartbeats {
		views = append(views, hb.View())
	}
	return views
}
