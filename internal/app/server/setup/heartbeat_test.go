package setup

import (
	"context"
	"testing"
	"time"

	"github.com/danielolaviobr/ubio/internal/config"
	"github.com/danielolaviobr/ubio/internal/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(store string) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			SQLite: config.SQLiteConfig{Path: "file:setup_test?mode=memory&cache=shared", LogLevel: "silent"},
		},
		Heartbeat: config.HeartbeatConfig{Store: store, MaxKeyLength: 128},
		Sweeper:   config.SweeperConfig{Enabled: true, Schedule: "@hourly", MaxAge: 24 * time.Hour},
		Monitor: config.MonitorConfig{
			Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "ubio"},
		},
	}
}

func TestBuildHeartbeatModule_Memory(t *testing.T) {
	cfg := testConfig(StoreMemory)
	infra, err := BuildInfrastructure(cfg)
	require.NoError(t, err)
	defer infra.Close()

	assert.Nil(t, infra.DB)
	assert.Nil(t, infra.Redis)
	assert.IsType(t, events.NopPublisher{}, infra.Publisher)
	require.NotNil(t, infra.Registry)

	module, err := BuildHeartbeatModule(cfg, infra)
	require.NoError(t, err)
	require.NotNil(t, module.HeartbeatHandler)
	require.NotNil(t, module.Scheduler)

	ctx := context.Background()
	_, err = module.LifecycleService.Refresh(ctx, "g1", "a", nil)
	require.NoError(t, err)
	assert.NoError(t, module.Pinger.Ping(ctx))

	families, err := infra.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "ubio_heartbeat_operations_total")
}

func TestBuildHeartbeatModule_SQLite(t *testing.T) {
	cfg := testConfig(StoreDatabase)
	cfg.Monitor.Metrics.Enabled = false

	infra, err := BuildInfrastructure(cfg)
	require.NoError(t, err)
	defer infra.Close()
	require.NotNil(t, infra.DB)

	module, err := BuildHeartbeatModule(cfg, infra)
	require.NoError(t, err)

	ctx := context.Background()
	view, err := module.LifecycleService.Refresh(ctx, "g1", "a", nil)
	require.NoError(t, err)
	assert.Equal(t, "a", view.ID)
	assert.NoError(t, module.Pinger.Ping(ctx))
}

func TestBuildHeartbeatModule_Errors(t *testing.T) {
	_, err := BuildHeartbeatModule(testConfig(StoreDatabase), &Infrastructure{})
	assert.Error(t, err)

	_, err = BuildHeartbeatModule(testConfig(StoreRedis), &Infrastructure{})
	assert.Error(t, err)

	_, err = BuildInfrastructure(testConfig("etcd"))
	assert.Error(t, err)

	cfg := testConfig(StoreMemory)
	cfg.Sweeper.Schedule = "not a schedule"
	_, err = BuildHeartbeatModule(cfg, &Infrastructure{Publisher: events.NopPublisher{}})
	assert.Error(t, err)
}
