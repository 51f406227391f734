package service

import (
	"context"
	"errors"
	"time"

	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// measuredStore decorates a store driver with read/write instrumentation.
// Error semantics pass through untouched: a miss still surfaces ErrCacheMiss
// to the caller, it is only counted on the way past.
type measuredStore struct {
	inner   store.Store
	metrics *MetricsService
}

// NewMeasuredStore wraps a store driver so every read and write feeds the
// metrics service. A nil metrics service returns the driver unwrapped.
func NewMeasuredStore(inner store.Store, metrics *MetricsService) store.Store {
	if metrics == nil {
		return inner
	}
	return &measuredStore{inner: inner, metrics: metrics}
}

func (s *measuredStore) Get(ctx context.Context, key string, dest interface{}) error {
	start := time.Now()
	err := s.inner.Get(ctx, key, dest)
	hit := err == nil
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		// driver failure, not a miss; leave the hit ratio alone
		return err
	}
	s.metrics.RecordStoreRead(hit, time.Since(start))
	return err
}

func (s *measuredStore) Set(ctx context.Context, key string, value interface{}) error {
	start := time.Now()
	err := s.inner.Set(ctx, key, value)
	s.metrics.ObserveStoreWrite(time.Since(start))
	return err
}

func (s *measuredStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

func (s *measuredStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.Keys(ctx, prefix)
}
