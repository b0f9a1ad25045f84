package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_RecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg, "ubio")
	require.NoError(t, err)

	p.RecordOperation("refresh", ResultSuccess)
	p.RecordOperation("refresh", ResultSuccess)
	p.RecordOperation("delete", ResultFailure)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.operations.WithLabelValues("refresh", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.operations.WithLabelValues("delete", ResultFailure)))
}

func TestPrometheusCollector_RecordSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg, "")
	require.NoError(t, err)

	at := time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)
	p.RecordSweep(ResultSuccess, 3, 3, 20*time.Millisecond, at)
	p.RecordSweep(ResultNoop, 0, 0, time.Millisecond, at)
	p.RecordSweep(ResultFailure, 0, 0, time.Millisecond, at)

	assert.Equal(t, 3.0, testutil.ToFloat64(p.sweptTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.sweepCandidates))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(p.sweepLastRun))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.sweepRuns.WithLabelValues(ResultFailure)))

	// 空命名空间回落到 ubio
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "ubio_sweeper_swept_total")
	assert.Contains(t, names, "ubio_sweeper_runs_total")
}

func TestNewPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg, "ubio")
	require.NoError(t, err)

	_, err = NewPrometheus(reg, "ubio")
	assert.Error(t, err)
}
