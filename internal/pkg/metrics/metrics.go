/**
 * 监控:业务指标
 * @date: 2026.10.13
 * @description: 心跳操作与过期清理任务的指标采集接口
 * @func:
 *   - Collector 指标采集接口
 *   - NopCollector 空实现(未启用监控时使用)
 *   - PrometheusCollector Prometheus 实现
 */
package metrics

import "time"

// 操作结果标签
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultNoop    = "noop"
)

// Collector 指标采集接口
type Collector interface {
	// RecordOperation 记录一次心跳操作(refresh/delete/list)的结果
	RecordOperation(operation, result string)
	// RecordSweep 记录一次过期清理
	RecordSweep(result string, candidates int, swept int64, duration time.Duration, at time.Time)
}

// NopCollector 空实现
type NopCollector struct{}

var _ Collector = NopCollector{}

// NewNop 创建空实现
func NewNop() NopCollector { return NopCollector{} }

// RecordOperation 空实现
func (NopCollector) RecordOperation(string, string) {}

// RecordSweep 空实现
func (NopCollector) RecordSweep(string, int, int64, time.Duration, time.Time) {}
