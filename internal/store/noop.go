package store

import (
	"context"

	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// NoopStore is the driver for environments without any persistence: every
// read is a miss and writes vanish. Callers built against the Store port
// degrade to always-fresh fetching without special cases.
type NoopStore struct{}

// NewNoopStore returns the no-op driver.
func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

var _ Store = (*NoopStore)(nil)

func (*NoopStore) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (*NoopStore) Set(ctx context.Context, key string, value interface{}) error {
	return nil
}

func (*NoopStore) Remove(ctx context.Context, key string) error {
	return nil
}

func (*NoopStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return nil, nil
}
