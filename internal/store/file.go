package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/zap"

	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// FileStore keeps each key as a JSON file under a base directory. It suits
// single-node deployments that want state to survive restarts without
// running Redis.
type FileStore struct {
	dir    string
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewFileStore ensures the base directory exists and returns a handle.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "./data"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

var _ Store = (*FileStore)(nil)

// Get reads and unmarshals the value into dest.
func (s *FileStore) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.RLock()
	raw, err := os.ReadFile(s.path(key))
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("read store file %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("resetting corrupted store entry",
			zap.String("key", key), zap.Error(err))
		_ = s.Remove(ctx, key)
		return appErrors.ErrCacheMiss
	}

	return nil
}

// Set marshals and writes the value atomically via a temp file rename.
func (s *FileStore) Set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal store value for %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		if errors.Is(err, syscall.ENOSPC) {
			s.logger.Warn("disk quota exhausted", zap.String("key", key), zap.Error(err))
			return appErrors.ErrQuotaExceeded
		}
		return fmt.Errorf("write store file %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit store file %s: %w", key, err)
	}

	return nil
}

// Remove deletes the key's file; an absent file is not an error.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove store file %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys under the given prefix.
func (s *FileStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	entries, err := os.ReadDir(s.dir)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("list store directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := decodeKey(strings.TrimSuffix(name, ".json"))
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, encodeKey(key)+".json")
}

// Keys never contain '_' (see keys.go), so the ':' mapping is reversible.
func encodeKey(key string) string {
	return strings.ReplaceAll(key, ":", "__")
}

func decodeKey(name string) string {
	return strings.ReplaceAll(name, "__", ":")
}
