package heartbeat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielolaviobr/ubio/internal/config"
	hbModel "github.com/danielolaviobr/ubio/internal/model/heartbeat"
	"github.com/danielolaviobr/ubio/internal/model/system"
	"github.com/danielolaviobr/ubio/internal/pkg/events"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"
	memRepo "github.com/danielolaviobr/ubio/internal/repo/memory/heartbeat"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSweeper_MarksOnlyExpiredActive(t *testing.T) {
	store := memRepo.NewHeartbeatRepository()
	ctx := context.Background()

	seed := []struct {
		id        string
		updatedAt time.Time
		status    hbModel.Status
	}{
		{id: "old", updatedAt: time.Date(2022, 12, 11, 0, 0, 0, 0, time.UTC), status: hbModel.StatusActive},
		{id: "boundary", updatedAt: time.Date(2022, 12, 14, 0, 0, 0, 0, time.UTC), status: hbModel.StatusActive},
		{id: "fresh", updatedAt: time.Date(2022, 12, 14, 12, 0, 0, 0, time.UTC), status: hbModel.StatusActive},
		{id: "deleted", updatedAt: time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC), status: hbModel.StatusDeleted},
		{id: "stale", updatedAt: time.Date(2022, 12, 2, 0, 0, 0, 0, time.UTC), status: hbModel.StatusStale},
	}
	for _, s := range seed {
		_, err := store.Upsert(ctx, "g1", s.id, nil, s.updatedAt)
		require.NoError(t, err)
		if s.status != hbModel.StatusActive {
			_, err = store.UpdateStatus(ctx, "g1", s.id, s.status, s.updatedAt)
			require.NoError(t, err)
		}
	}

	now := time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)
	sweeper := NewSweeper(store)
	result, err := sweeper.Run(ctx, now, 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Swept)
	assert.Equal(t, 2, result.Candidates)
	assert.True(t, time.Date(2022, 12, 14, 0, 0, 0, 0, time.UTC).Equal(result.StaleBefore))

	want := map[string]hbModel.Status{
		"old":      hbModel.StatusStale,
		"boundary": hbModel.StatusStale,
		"fresh":    hbModel.StatusActive,
		"deleted":  hbModel.StatusDeleted,
		"stale":    hbModel.StatusStale,
	}
	for id, status := range want {
		hb, err := store.FindOne(ctx, "g1", id)
		require.NoError(t, err)
		assert.Equal(t, status, hb.Status, id)
	}

	old, err := store.FindOne(ctx, "g1", "old")
	require.NoError(t, err)
	assert.True(t, now.Equal(old.UpdatedAt))

	// 再次执行没有新的候选
	again, err := sweeper.Run(ctx, now, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, again.Swept)
}

func TestSweeper_EmptyCandidatesNoWrite(t *testing.T) {
	now := time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)

	store := new(MockHeartbeatStore)
	store.On("FindStale", mock.Anything, now.Add(-24*time.Hour)).Return([]*hbModel.Heartbeat{}, nil).Once()

	result, err := NewSweeper(store).Run(context.Background(), now, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, result.Swept)
	assert.Zero(t, result.Candidates)
	store.AssertNotCalled(t, "BatchUpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestSweeper_SingleBatchBySurrogateID(t *testing.T) {
	now := time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)
	candidates := []*hbModel.Heartbeat{
		newHeartbeat(3, "g1", "a", hbModel.StatusActive, now.Add(-72*time.Hour)),
		newHeartbeat(9, "g2", "b", hbModel.StatusActive, now.Add(-48*time.Hour)),
		newHeartbeat(11, "g1", "c", hbModel.StatusActive, now.Add(-25*time.Hour)),
	}

	store := new(MockHeartbeatStore)
	store.On("FindStale", mock.Anything, now.Add(-24*time.Hour)).Return(candidates, nil)
	// 并发刷新导致存储只确认了部分更新
	store.On("BatchUpdateStatus", mock.Anything, []uint64{3, 9, 11}, hbModel.StatusStale, now).Return(int64(2), nil).Once()

	pub := &recordingPublisher{}
	result, err := NewSweeper(store, WithPublisher(pub)).Run(context.Background(), now, 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Swept)
	assert.Equal(t, 3, result.Candidates)
	store.AssertNumberOfCalls(t, "BatchUpdateStatus", 1)
	assert.Equal(t, []events.EventType{events.EventSwept}, pub.types())
}

func TestSweeper_StoreErrors(t *testing.T) {
	now := time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)

	t.Run("find_stale", func(t *testing.T) {
		storeErr := system.NewStoreUnavailableError("find_stale", errStoreDown)
		store := new(MockHeartbeatStore)
		store.On("FindStale", mock.Anything, mock.Anything).Return(nil, storeErr)

		_, err := NewSweeper(store).Run(context.Background(), now, 24*time.Hour)
		assert.Same(t, storeErr, err)
		store.AssertNotCalled(t, "BatchUpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("batch_update", func(t *testing.T) {
		storeErr := system.NewStoreUnavailableError("batch_update_status", errStoreDown)
		store := new(MockHeartbeatStore)
		store.On("FindStale", mock.Anything, mock.Anything).
			Return([]*hbModel.Heartbeat{newHeartbeat(1, "g1", "a", hbModel.StatusActive, now.Add(-48*time.Hour))}, nil)
		store.On("BatchUpdateStatus", mock.Anything, []uint64{1}, hbModel.StatusStale, now).Return(int64(0), storeErr).Once()

		sweeper := NewSweeper(store)
		_, err := sweeper.Run(context.Background(), now, 24*time.Hour)
		assert.True(t, system.IsStoreUnavailable(err))
		store.AssertNumberOfCalls(t, "BatchUpdateStatus", 1)
		assert.False(t, sweeper.Running())
	})
}

func TestSweeper_SingleFlight(t *testing.T) {
	now := time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)
	entered := make(chan struct{})
	release := make(chan struct{})

	store := new(MockHeartbeatStore)
	store.On("FindStale", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return([]*hbModel.Heartbeat{}, nil).Once()

	sweeper := NewSweeper(store)
	done := make(chan error, 1)
	go func() {
		_, err := sweeper.Run(context.Background(), now, time.Hour)
		done <- err
	}()

	<-entered
	assert.True(t, sweeper.Running())
	_, err := sweeper.Run(context.Background(), now, time.Hour)
	assert.True(t, errors.Is(err, ErrSweepInProgress))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, sweeper.Running())
	store.AssertNumberOfCalls(t, "FindStale", 1)
}

func TestSweeper_BatchSurvivesCanceledContext(t *testing.T) {
	now := time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())

	store := new(MockHeartbeatStore)
	store.On("FindStale", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return([]*hbModel.Heartbeat{newHeartbeat(1, "g1", "a", hbModel.StatusActive, now.Add(-48*time.Hour))}, nil)
	store.On("BatchUpdateStatus", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }),
		[]uint64{1}, hbModel.StatusStale, now).Return(int64(1), nil).Once()

	result, err := NewSweeper(store).Run(ctx, now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Swept)
}

func TestSweeper_DefaultMaxAge(t *testing.T) {
	now := time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)

	store := new(MockHeartbeatStore)
	store.On("FindStale", mock.Anything, now.Add(-DefaultMaxAge)).Return([]*hbModel.Heartbeat{}, nil).Once()

	prev := logger.LoggerInstance
	t.Cleanup(func() { logger.LoggerInstance = prev })
	lm, err := logger.InitLogger(&config.LogConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	hook := logtest.NewLocal(lm.GetLogger())

	result, err := NewSweeper(store).Run(context.Background(), now, 0)
	require.NoError(t, err)
	assert.True(t, now.Add(-DefaultMaxAge).Equal(result.StaleBefore))
	store.AssertExpectations(t)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "invalid sweep max age, using default" {
			warned = true
			assert.Equal(t, "0s", entry.Data["max_age"])
		}
	}
	assert.True(t, warned)
}

// refreshBetweenStore 在 FindStale 返回后立即刷新一次，模拟查询与批量写入之间的并发刷新
type refreshBetweenStore struct {
	HeartbeatStore
	afterFind func()
}

func (s *refreshBetweenStore) FindStale(ctx context.Context, olderThan time.Time) ([]*hbModel.Heartbeat, error) {
	found, err := s.HeartbeatStore.FindStale(ctx, olderThan)
	if err == nil {
		s.afterFind()
	}
	return found, err
}

func TestSweeper_RefreshDuringSweepKeepsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)
	mem := memRepo.NewHeartbeatRepository()

	_, err := mem.Upsert(ctx, "g1", "a", nil, time.Date(2022, 12, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	svc := NewLifecycleService(mem, WithClock(fixedClock(now.Add(5*time.Millisecond))))
	var refreshed *hbModel.HeartbeatView
	store := &refreshBetweenStore{
		HeartbeatStore: mem,
		afterFind: func() {
			var refreshErr error
			refreshed, refreshErr = svc.Refresh(ctx, "g1", "a", nil)
			require.NoError(t, refreshErr)
		},
	}

	result, err := NewSweeper(store).Run(ctx, now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Swept)
	require.NotNil(t, refreshed)

	hb, err := mem.FindOne(ctx, "g1", "a")
	require.NoError(t, err)
	// 批量写入不复核时间条件，但 updated_at 不会回退
	assert.Equal(t, hbModel.StatusStale, hb.Status)
	assert.True(t, hb.UpdatedAt.Equal(refreshed.UpdatedAt))
	assert.False(t, hb.UpdatedAt.Before(refreshed.UpdatedAt))
}
