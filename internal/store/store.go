// Package store is the persisted key/value port behind every cached or
// user-authored piece of state: file caches, extracted texts, chat
// histories, preferences. Values are JSON documents; drivers decide where
// the bytes live.
package store

import "context"

// Store is the persistence port. Get unmarshals into dest and returns
// ErrCacheMiss when the key is absent; a corrupted value is reset and also
// reported as a miss so callers rebuild it instead of failing. Set
// overwrites whole values (entries are read-modify-write at the caller) and
// surfaces ErrQuotaExceeded distinctly when the backing medium is full.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
