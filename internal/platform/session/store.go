package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"

	"companion.local/internal/platform/metrics"
)

// Store persists session values by id. Load reports found=false for unknown
// or expired ids; that is not an error.
type Store interface {
	Load(ctx context.Context, id string) (values map[string]any, found bool, err error)
	Save(ctx context.Context, id string, values map[string]any, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Name() string
}

const redisKeyPrefix = "sess:"

// RedisStore keeps sessions in Redis so several replicas share them.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Load(ctx context.Context, id string) (map[string]any, bool, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		observe(r, "load", "miss")
		return nil, false, nil
	}
	if err != nil {
		observe(r, "load", "error")
		return nil, false, fmt.Errorf("redis get session: %w", err)
	}
	values, err := decode(raw)
	if err != nil {
		observe(r, "load", "error")
		return nil, false, err
	}
	observe(r, "load", "hit")
	return values, true, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, values map[string]any, ttl time.Duration) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+id, raw, ttl).Err(); err != nil {
		observe(r, "save", "error")
		return fmt.Errorf("redis set session: %w", err)
	}
	observe(r, "save", "ok")
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		observe(r, "delete", "error")
		return fmt.Errorf("redis del session: %w", err)
	}
	observe(r, "delete", "ok")
	return nil
}

// MemoryStore is the single-process fallback used when no Redis is configured.
// Entries are stored encoded so callers never share maps.
type MemoryStore struct {
	cache *ristretto.Cache
}

// NewMemoryStore bounds the store to roughly maxItems sessions.
func NewMemoryStore(maxItems int64) (*MemoryStore, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: cache}, nil
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Load(_ context.Context, id string) (map[string]any, bool, error) {
	v, ok := m.cache.Get(id)
	if !ok {
		observe(m, "load", "miss")
		return nil, false, nil
	}
	values, err := decode(v.([]byte))
	if err != nil {
		observe(m, "load", "error")
		return nil, false, err
	}
	observe(m, "load", "hit")
	return values, true, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, values map[string]any, ttl time.Duration) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	// cost=1 bounds by entry count
	if !m.cache.SetWithTTL(id, raw, 1, ttl) {
		observe(m, "save", "error")
		return errors.New("session rejected by memory store")
	}
	m.cache.Wait()
	observe(m, "save", "ok")
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Del(id)
	observe(m, "delete", "ok")
	return nil
}

func (m *MemoryStore) Close() {
	m.cache.Close()
}

func decode(raw []byte) (map[string]any, error) {
	values := make(map[string]any)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return values, nil
}

func observe(s Store, op, result string) {
	metrics.SessionStoreOperations.WithLabelValues(s.Name(), op, result).Inc()
}
