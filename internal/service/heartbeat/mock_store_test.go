package heartbeat

import (
	"context"
	"errors"
	"sync"
	"time"

	hbModel "github.com/danielolaviobr/ubio/internal/model/heartbeat"
	"github.com/danielolaviobr/ubio/internal/pkg/events"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockHeartbeatStore struct {
	mock.Mock
}

func (m *MockHeartbeatStore) FindOne(ctx context.Context, group, id string) (*hbModel.Heartbeat, error) {
	args := m.Called(ctx, group, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hbModel.Heartbeat), args.Error(1)
}

func (m *MockHeartbeatStore) Upsert(ctx context.Context, group, id string, meta hbModel.Meta, now time.Time) (*hbModel.Heartbeat, error) {
	args := m.Called(ctx, group, id, meta, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hbModel.Heartbeat), args.Error(1)
}

func (m *MockHeartbeatStore) UpdateStatus(ctx context.Context, group, id string, status hbModel.Status, now time.Time) (*hbModel.Heartbeat, error) {
	args := m.Called(ctx, group, id, status, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hbModel.Heartbeat), args.Error(1)
}

func (m *MockHeartbeatStore) ListActive(ctx context.Context, group string) ([]*hbModel.Heartbeat, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*hbModel.Heartbeat), args.Error(1)
}

func (m *MockHeartbeatStore) FindStale(ctx context.Context, olderThan time.Time) ([]*hbModel.Heartbeat, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*hbModel.Heartbeat), args.Error(1)
}

func (m *MockHeartbeatStore) BatchUpdateStatus(ctx context.Context, ids []uint64, status hbModel.Status, now time.Time) (int64, error) {
	args := m.Called(ctx, ids, status, now)
	return args.Get(0).(int64), args.Error(1)
}

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

var errStoreDown = errors.New("connection refused")

// fixedClock 返回固定时间的时钟
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newHeartbeat(sid uint64, group, id string, status hbModel.Status, updatedAt time.Time) *hbModel.Heartbeat {
	hb := &hbModel.Heartbeat{Group: group, ID: id, Status: status, Meta: hbModel.Meta{}}
	hb.SurrogateID = sid
	hb.CreatedAt = updatedAt
	hb.UpdatedAt = updatedAt
	return hb
}
