package refresh

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSettingsLoadFallsBackToDefault(t *testing.T) {
	s := NewSettings(SettingsParams{
		Store:           store.NewMemoryStore(0),
		DefaultInterval: 5 * time.Minute,
	})
	s.Load(context.Background())

	assert.Equal(t, 5*time.Minute, s.Interval())
	assert.Equal(t, 5, s.IntervalMinutes())
}

func TestSettingsPersistAndReload(t *testing.T) {
	ctx := context.Background()
	backing := store.NewMemoryStore(0)

	s := NewSettings(SettingsParams{Store: backing, DefaultInterval: 5 * time.Minute})
	require.NoError(t, s.SetIntervalMinutes(ctx, 30))
	assert.Equal(t, 30*time.Minute, s.Interval())

	var saved models.RefreshSettings
	require.NoError(t, backing.Get(ctx, store.KeyRefreshSettings, &saved))
	assert.Equal(t, 30, saved.IntervalMinutes)

	reloaded := NewSettings(SettingsParams{Store: backing, DefaultInterval: 5 * time.Minute})
	reloaded.Load(ctx)
	assert.Equal(t, 30*time.Minute, reloaded.Interval())
}

func TestSettingsPersistedZeroSurvivesReload(t *testing.T) {
	ctx := context.Background()
	backing := store.NewMemoryStore(0)

	s := NewSettings(SettingsParams{Store: backing, DefaultInterval: 5 * time.Minute})
	require.NoError(t, s.SetIntervalMinutes(ctx, 0))

	reloaded := NewSettings(SettingsParams{Store: backing, DefaultInterval: 5 * time.Minute})
	reloaded.Load(ctx)
	assert.Equal(t, time.Duration(0), reloaded.Interval(),
		"an explicit zero is a preference, not a missing value")
}

func TestSettingsRejectNegativeInterval(t *testing.T) {
	s := NewSettings(SettingsParams{Store: store.NewMemoryStore(0)})
	assert.Error(t, s.SetIntervalMinutes(context.Background(), -1))
}

func TestSubscribeReceivesLatestChange(t *testing.T) {
	s := NewSettings(SettingsParams{Store: store.NewMemoryStore(0)})

	updates, cancel := s.Subscribe()
	defer cancel()

	// Two quick changes; the subscriber wakes to the newest one.
	s.apply(10 * time.Minute)
	s.apply(20 * time.Minute)

	select {
	case got := <-updates:
		assert.Equal(t, 20*time.Minute, got)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestSchedulerRunsOnInterval(t *testing.T) {
	s := NewSettings(SettingsParams{Store: store.NewMemoryStore(0)})
	s.apply(10 * time.Millisecond)

	var runs int32
	scheduler := NewScheduler(SchedulerParams{
		Name:     "agenda",
		Settings: s,
		Task:     func(ctx context.Context) { atomic.AddInt32(&runs, 1) },
	})

	scheduler.Start(context.Background())
	defer scheduler.Stop()

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&runs) >= 2 })
}

func TestSchedulerZeroIntervalDisablesRuns(t *testing.T) {
	s := NewSettings(SettingsParams{Store: store.NewMemoryStore(0)})
	s.apply(10 * time.Millisecond)

	var runs int32
	scheduler := NewScheduler(SchedulerParams{
		Name:     "calendar",
		Settings: s,
		Task:     func(ctx context.Context) { atomic.AddInt32(&runs, 1) },
	})
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&runs) >= 1 })

	s.apply(0)
	// Give the retune a moment to land, then confirm the counter stalls.
	time.Sleep(30 * time.Millisecond)
	settled := atomic.LoadInt32(&runs)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, atomic.LoadInt32(&runs), "no runs after disabling")
}

func TestSchedulerRetunesWithoutRestart(t *testing.T) {
	s := NewSettings(SettingsParams{Store: store.NewMemoryStore(0)})

	var runs int32
	scheduler := NewScheduler(SchedulerParams{
		Name:     "dashboard",
		Settings: s,
		Task:     func(ctx context.Context) { atomic.AddInt32(&runs, 1) },
	})

	// Starts disabled (zero interval), then a change brings it to life.
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	time.Sleep(30 * time.Millisecond)
	require.Zero(t, atomic.LoadInt32(&runs))

	s.apply(10 * time.Millisecond)
	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&runs) >= 1 })
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewSettings(SettingsParams{Store: store.NewMemoryStore(0)})
	scheduler := NewScheduler(SchedulerParams{
		Name:     "noop",
		Settings: s,
		Task:     func(ctx context.Context) {},
	})

	scheduler.Start(context.Background())
	scheduler.Stop()
	scheduler.Stop()
}
