package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task runs one refresh pass for a consumer. Implementations handle their
// own errors; the scheduler only provides cadence.
type Task func(ctx context.Context)

// RunObserver counts scheduler runs per consumer.
type RunObserver interface {
	RecordSchedulerRun(consumer string)
}

// SchedulerParams wires one consumer to the shared settings.
type SchedulerParams struct {
	Name     string
	Settings *Settings
	Task     Task
	Logger   *zap.Logger
	Observer RunObserver
}

// Scheduler re-runs a consumer's refresh task on the shared interval. Each
// consumer owns its own Scheduler; interval changes retune the ticker
// without restarting anything, and a zero interval parks the loop until the
// next change.
type Scheduler struct {
	name     string
	settings *Settings
	task     Task
	logger   *zap.Logger
	observer RunObserver

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewScheduler builds a scheduler; Start launches it.
func NewScheduler(p SchedulerParams) *Scheduler {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		name:     p.Name,
		settings: p.Settings,
		task:     p.Task,
		logger:   logger,
		observer: p.Observer,
	}
}

// Start launches the refresh loop. Consumers fetch on demand when they come
// up; the scheduler only adds the periodic re-runs, so the first tick lands
// one full interval after Start.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true

	s.wg.Add(1)
	go s.loop(loopCtx)

	s.logger.Info("refresh scheduler started",
		zap.String("consumer", s.name),
		zap.Duration("interval", s.settings.Interval()))
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("refresh scheduler stopped", zap.String("consumer", s.name))
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	updates, unsubscribe := s.settings.Subscribe()
	defer unsubscribe()

	var ticker *time.Ticker
	var tick <-chan time.Time
	retune := func(interval time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
		if interval > 0 {
			ticker = time.NewTicker(interval)
			tick = ticker.C
		}
	}
	retune(s.settings.Interval())
	defer retune(0)

	for {
		select {
		case <-ctx.Done():
			return
		case interval := <-updates:
			retune(interval)
			s.logger.Info("refresh scheduler retuned",
				zap.String("consumer", s.name),
				zap.Duration("interval", interval))
		case <-tick:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	start := time.Now()
	s.task(ctx)
	if s.observer != nil {
		s.observer.RecordSchedulerRun(s.name)
	}
	s.logger.Debug("refresh run finished",
		zap.String("consumer", s.name),
		zap.Duration("took", time.Since(start)))
}
