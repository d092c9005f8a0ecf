package reschedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPreviewStore shares previews between processes through Redis.
type RedisPreviewStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisPreviewStore(rdb redis.UniversalClient, prefix string, ttl time.Duration) *RedisPreviewStore {
	return &RedisPreviewStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisPreviewStore) key(k PreviewKey) string {
	return s.prefix + "preview:" + k.String()
}

func (s *RedisPreviewStore) Get(ctx context.Context, key PreviewKey) (*Result, error) {
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPreviewMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading preview: %w", err)
	}
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decoding preview: %w", err)
	}
	return &r, nil
}

func (s *RedisPreviewStore) Set(ctx context.Context, key PreviewKey, r *Result) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing preview: %w", err)
	}
	return nil
}

// NewRedisClient connects and pings so misconfiguration fails at startup.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return rdb, nil
}
