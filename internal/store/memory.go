package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// MemoryStore holds values in process memory. It backs tests and ephemeral
// deployments, and its optional byte quota reproduces the full-storage
// behaviour of the real backends.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	quota int64
	used  int64
}

// NewMemoryStore builds an in-memory store. quotaBytes of zero means
// unlimited.
func NewMemoryStore(quotaBytes int64) *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte), quota: quotaBytes}
}

var _ Store = (*MemoryStore)(nil)

// Get unmarshals the stored value into dest.
func (s *MemoryStore) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		_ = s.Remove(ctx, key)
		return appErrors.ErrCacheMiss
	}
	return nil
}

// Set marshals and stores the value, enforcing the quota if one is set.
func (s *MemoryStore) Set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal store value for %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.used - int64(len(s.data[key])) + int64(len(payload))
	if s.quota > 0 && next > s.quota {
		return appErrors.ErrQuotaExceeded
	}
	s.data[key] = payload
	s.used = next
	return nil
}

// Remove deletes the key.
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used -= int64(len(s.data[key]))
	delete(s.data, key)
	return nil
}

// Keys lists stored keys under the given prefix, sorted for determinism.
func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
