// Package refresh owns the auto-refresh machinery: the persisted interval
// preference and the per-consumer schedulers that re-run aggregation work.
package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// SettingsParams configures the shared refresh settings.
type SettingsParams struct {
	Store           store.Store
	DefaultInterval time.Duration
	Logger          *zap.Logger
}

// Settings holds the live auto-refresh interval, persists changes and fans
// them out to subscribed schedulers. An interval of zero disables periodic
// refresh for every subscriber.
type Settings struct {
	store  store.Store
	logger *zap.Logger

	mu       sync.RWMutex
	interval time.Duration
	subs     map[int]chan time.Duration
	nextID   int
}

// NewSettings builds the settings holder seeded with the default interval;
// call Load to pull the persisted preference.
func NewSettings(p SettingsParams) *Settings {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Settings{
		store:    p.Store,
		logger:   logger,
		interval: p.DefaultInterval,
		subs:     make(map[int]chan time.Duration),
	}
}

// Load replaces the live interval with the persisted preference. A missing
// entry keeps the default; an explicit zero means the user disabled refresh.
func (s *Settings) Load(ctx context.Context) {
	var saved models.RefreshSettings
	if err := s.store.Get(ctx, store.KeyRefreshSettings, &saved); err != nil {
		if appErrors.FromError(err).Code != appErrors.ErrCacheMiss.Code {
			s.logger.Warn("loading refresh settings failed, keeping default", zap.Error(err))
		}
		return
	}
	s.apply(time.Duration(saved.IntervalMinutes) * time.Minute)
}

// Interval returns the current refresh interval. Zero disables refresh.
func (s *Settings) Interval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}

// IntervalMinutes returns the interval in the unit the API speaks.
func (s *Settings) IntervalMinutes() int {
	return int(s.Interval() / time.Minute)
}

// SetIntervalMinutes persists the preference and retunes every subscriber.
func (s *Settings) SetIntervalMinutes(ctx context.Context, minutes int) error {
	if minutes < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "refresh interval must be zero or more minutes")
	}

	if err := s.store.Set(ctx, store.KeyRefreshSettings, models.RefreshSettings{IntervalMinutes: minutes}); err != nil {
		return err
	}

	s.apply(time.Duration(minutes) * time.Minute)
	return nil
}

// Subscribe returns a channel that receives interval changes and a cancel
// function. The channel holds only the most recent value.
func (s *Settings) Subscribe() (<-chan time.Duration, func()) {
	ch := make(chan time.Duration, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

// apply swaps the live interval and notifies subscribers without blocking.
func (s *Settings) apply(interval time.Duration) {
	s.mu.Lock()
	s.interval = interval
	listeners := make([]chan time.Duration, 0, len(s.subs))
	for _, ch := range s.subs {
		listeners = append(listeners, ch)
	}
	s.mu.Unlock()

	for _, ch := range listeners {
		offer(ch, interval)
	}
	s.logger.Info("refresh interval updated", zap.Duration("interval", interval))
}

// offer replaces any queued value so a slow subscriber always wakes to the
// latest interval.
func offer(ch chan time.Duration, value time.Duration) {
	for {
		select {
		case ch <- value:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
