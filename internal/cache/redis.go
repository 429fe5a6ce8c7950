// Package cache provides the Redis cache-aside layer for feed queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ripple/internal/observability"

	"github.com/redis/go-redis/v9"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewClient creates a Redis client for the given address or URL. A nil client
// is returned when the address is invalid or the server is unreachable; the
// Store degrades to always-miss in that case.
func NewClient(addr string) *redis.Client {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			observability.GlobalLogger.Warn("invalid REDIS_URL, continuing without cache", "addr", addr, "error", err.Error())
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		observability.GlobalLogger.Warn("Redis unreachable, continuing without cache", "error", err.Error())
		return nil
	}
	observability.GlobalLogger.Info("Redis connected successfully")
	return client
}

// Store is an injectable cache handle scoped to the service that owns it.
// It has no correctness obligation beyond eventually reflecting the last Set
// for a key within its TTL; it is a best-effort accelerator.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a Store around client with the given entry TTL.
// A nil client yields a Store whose reads always miss and writes are no-ops.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
// A miss is observably distinct from a cached empty value.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		observability.CacheMisses.WithLabelValues(keyspace(key)).Inc()
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	observability.CacheHits.WithLabelValues(keyspace(key)).Inc()
	return true, nil
}

// SetJSON marshals v and sets the key with the Store's TTL, overwriting any
// existing entry.
func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	if s.client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

// Invalidate removes the given keys. Best-effort.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if s.client == nil || len(keys) == 0 {
		return
	}
	s.client.Del(ctx, keys...)
}

// InvalidateFeed removes every cached feed entry. Called on post create,
// update and delete; vote and reaction writes deliberately leave the cache
// alone, accepting staleness until TTL expiry.
func (s *Store) InvalidateFeed(ctx context.Context) {
	if s.client == nil {
		return
	}
	iter := s.client.Scan(ctx, 0, FeedKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		observability.GlobalLogger.Warn("feed invalidation scan failed", "error", err.Error())
	}
	if len(keys) > 0 {
		s.client.Del(ctx, keys...)
	}
}

// keyspace extracts the metrics label from a key ("feed:..." -> "feed").
func keyspace(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
