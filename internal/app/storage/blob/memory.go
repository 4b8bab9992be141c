package blob

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func objectPath(bucket, key string) string {
	return bucket + "/" + key
}

func (s *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[objectPath(bucket, key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[objectPath(bucket, key)] = stored
	return nil
}

func (s *MemoryStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for path := range s.objects {
		if strings.HasPrefix(path, objectPath(bucket, prefix)) {
			keys = append(keys, strings.TrimPrefix(path, bucket+"/"))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Remove(ctx context.Context, bucket string, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.objects, objectPath(bucket, key))
	}
	return nil
}

func (s *MemoryStore) Download(ctx context.Context, bucket, key, localPath string) error {
	data, err := s.Get(ctx, bucket, key)
	if err != nil {
		return err
	}
	return os.WriteFile(localPath, data, 0o644)
}

func (s *MemoryStore) PresignedPut(ctx context.Context, bucket, key, contentType string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://memory-store.invalid/%s/%s", bucket, key), nil
}
