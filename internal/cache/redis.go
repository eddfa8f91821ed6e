package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// createdIndex is the sorted set tracking each entry's creation time,
// scored by unix milliseconds. It lives under the cache prefix but is not
// itself a cache entry.
const createdIndex = "__created__"

// RedisBackend stores cache entries in Redis, namespaced by a key prefix so
// several caches can share one database. Expiry is delegated to Redis TTLs;
// creation times are kept in a companion sorted set for age reporting.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects to the Redis instance described by url
// (redis://...) and verifies the connection with a ping.
func NewRedisBackend(ctx context.Context, url, prefix string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &RedisBackend{client: client, prefix: prefix}, nil
}

// Get implements Backend.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set implements Backend. Redis treats a zero expiration as no expiry,
// which matches the Backend contract. Overwriting a key restamps its
// creation time.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.prefix+key, value, ttl)
	pipe.ZAdd(ctx, b.indexKey(), &redis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: key,
	})
	_, err := pipe.Exec(ctx)
	return err
}

// Delete implements Backend.
func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	members := make([]interface{}, len(keys))
	for i, key := range keys {
		prefixed[i] = b.prefix + key
		members[i] = key
	}
	pipe := b.client.TxPipeline()
	pipe.Del(ctx, prefixed...)
	pipe.ZRem(ctx, b.indexKey(), members...)
	_, err := pipe.Exec(ctx)
	return err
}

// Keys implements Backend using SCAN to avoid blocking the server. The
// creation-time index is not a cache entry and is excluded.
func (b *RedisBackend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := b.client.Scan(ctx, 0, b.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if iter.Val() == b.indexKey() {
			continue
		}
		keys = append(keys, strings.TrimPrefix(iter.Val(), b.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// OldestEntryAge implements Backend. Index members whose entries have
// expired under Redis TTL are dropped as they are encountered.
func (b *RedisBackend) OldestEntryAge(ctx context.Context) (time.Duration, error) {
	for {
		entries, err := b.client.ZRangeWithScores(ctx, b.indexKey(), 0, 0).Result()
		if err != nil {
			return 0, err
		}
		if len(entries) == 0 {
			return 0, nil
		}
		member, ok := entries[0].Member.(string)
		if !ok {
			return 0, fmt.Errorf("unexpected index member type %T", entries[0].Member)
		}
		exists, err := b.client.Exists(ctx, b.prefix+member).Result()
		if err != nil {
			return 0, err
		}
		if exists == 0 {
			if err := b.client.ZRem(ctx, b.indexKey(), member).Err(); err != nil {
				return 0, err
			}
			continue
		}
		created := time.UnixMilli(int64(entries[0].Score))
		return time.Since(created), nil
	}
}

// Clear implements Backend, removing only keys under this cache's prefix.
func (b *RedisBackend) Clear(ctx context.Context) error {
	keys, err := b.Keys(ctx)
	if err != nil {
		return err
	}
	if err := b.Delete(ctx, keys...); err != nil {
		return err
	}
	return b.client.Del(ctx, b.indexKey()).Err()
}

func (b *RedisBackend) indexKey() string {
	return b.prefix + createdIndex
}

// Close releases the underlying Redis connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
