package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector 基于 Prometheus 的指标采集实现
type PrometheusCollector struct {
	operations      *prometheus.CounterVec
	sweepRuns       *prometheus.CounterVec
	sweptTotal      prometheus.Counter
	sweepCandidates prometheus.Gauge
	sweepLastRun    prometheus.Gauge
	sweepDuration   prometheus.Histogram
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus 创建 Prometheus 指标采集器
//
// Parameters:
//   - reg: 指标注册器，为空时使用 prometheus.DefaultRegisterer
//   - namespace: 指标命名空间，为空时使用 "ubio"
func NewPrometheus(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "ubio"
	}

	p := &PrometheusCollector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "heartbeat",
			Name:      "operations_total",
			Help:      "Total heartbeat operations by operation and result.",
		}, []string{"operation", "result"}),
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "runs_total",
			Help:      "Total staleness sweeps by result (success,failure,noop).",
		}, []string{"result"}),
		sweptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "swept_total",
			Help:      "Total heartbeats transitioned to STALE.",
		}),
		sweepCandidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "candidates",
			Help:      "Number of stale candidates found by the last sweep.",
		}),
		sweepLastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the last sweep.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "duration_seconds",
			Help:      "Duration of staleness sweeps in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms .. ~10s
		}),
	}

	collectors := []prometheus.Collector{
		p.operations, p.sweepRuns, p.sweptTotal, p.sweepCandidates, p.sweepLastRun, p.sweepDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// RecordOperation 记录一次心跳操作
func (p *PrometheusCollector) RecordOperation(operation, result string) {
	p.operations.WithLabelValues(operation, result).Inc()
}

// RecordSweep 记录一次过期清理
func (p *PrometheusCollector) RecordSweep(result string, candidates int, swept int64, duration time.Duration, at time.Time) {
	p.sweepRuns.WithLabelValues(result).Inc()
	p.sweepDuration.Observe(duration.Seconds())
	p.sweepLastRun.Set(float64(at.Unix()))
	if result == ResultFailure {
		return
	}
	p.sweepCandidates.Set(float64(candidates))
	if swept > 0 {
		p.sweptTotal.Add(float64(swept))
	}
}
