package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Keys of the values kept in the status store
const (
	KeyUpstreamHealth     = "health:upstreams"
	KeySystemHealth       = "health:system"
	KeyCertificateReports = "certificates:reports"
)

// StatusStore keeps the most recent value of each observation; a Put replaces
// the previous value
type StatusStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStatusStore wraps client. A zero ttl keeps values until overwritten.
func NewStatusStore(client *redis.Client, prefix string, ttl time.Duration) *StatusStore {
	return &StatusStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *StatusStore) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

// Put stores v as JSON under key
func (s *StatusStore) Put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Get decodes the value under key into v. It reports false when nothing is stored.
func (s *StatusStore) Get(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
