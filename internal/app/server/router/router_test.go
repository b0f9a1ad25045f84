package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielolaviobr/ubio/internal/app/server/setup"
	"github.com/danielolaviobr/ubio/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestRouter(t *testing.T, metricsEnabled bool) (*Router, *setup.HeartbeatModule) {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		Heartbeat: config.HeartbeatConfig{Store: setup.StoreMemory, MaxKeyLength: 128},
		Sweeper:   config.SweeperConfig{Schedule: "@hourly", MaxAge: 24 * time.Hour},
		Monitor: config.MonitorConfig{
			Metrics: config.MetricsConfig{Enabled: metricsEnabled, Path: "/metrics", Namespace: "ubio"},
			Health:  config.HealthConfig{Enabled: true},
		},
		App: config.AppConfig{Name: "ubio"},
	}
	infra, err := setup.BuildInfrastructure(cfg)
	require.NoError(t, err)
	t.Cleanup(infra.Close)

	module, err := setup.BuildHeartbeatModule(cfg, infra)
	require.NoError(t, err)

	r := NewRouter(cfg, module, infra.Registry)
	r.SetupRoutes()
	return r, module
}

func serve(r *Router, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)
	return w
}

func TestHeartbeatRoutes(t *testing.T) {
	r, _ := newTestRouter(t, false)

	w := serve(r, http.MethodPost, "/api/v1/heartbeats/g1/a", `{"meta":{"region":"eu"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/api/v1/heartbeats/g1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Data.Total)

	w = serve(r, http.MethodDelete, "/api/v1/heartbeats/g1/a", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/heartbeats/g1/a", "")
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = serve(r, http.MethodGet, "/api/v1/heartbeats", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Data.Total)
}

func TestSweepRoute(t *testing.T) {
	r, _ := newTestRouter(t, false)

	w := serve(r, http.MethodPost, "/api/v1/sweeps", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Swept      int64 `json:"swept"`
			Candidates int   `json:"candidates"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(0), resp.Data.Swept)
	assert.Equal(t, 0, resp.Data.Candidates)
}

func TestHealthRoutes(t *testing.T) {
	r, _ := newTestRouter(t, false)

	for _, path := range []string{"/api/health", "/api/ready", "/api/live"} {
		w := serve(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	r.pinger = downPinger{}
	w := serve(r, http.MethodGet, "/api/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsRoute(t *testing.T) {
	r, _ := newTestRouter(t, true)

	serve(r, http.MethodPost, "/api/v1/heartbeats/g1/a", "")
	w := serve(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ubio_heartbeat_operations_total{operation="refresh",result="success"} 1`)

	r, _ = newTestRouter(t, false)
	w = serve(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
