package model

import "time"

// BaseModel 提供统一的基础字段：代理主键、CreatedAt、UpdatedAt。
// 约定与特性：
//  1. SurrogateID 为自增主键，只在存储内部使用(批量更新的目标)，不对外暴露。
//     业务主键由具体模型自行定义(例如心跳的 group + id 联合唯一索引)，
//     因此这里不使用 id 作为列名，避免与业务字段冲突。
//  2. CreatedAt/UpdatedAt 由调用方显式赋值，不依赖 GORM 的自动时间戳，
//     保证时间由服务层统一的时钟产生并且可以在测试中固定。
type BaseModel struct {
	SurrogateID uint64    `json:"-" gorm:"column:surrogate_id;primaryKey;autoIncrement;comment:代理主键"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;precision:3;not null;comment:创建时间"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;precision:3;not null;index;comment:更新时间"`
}
