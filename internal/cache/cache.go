package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// ErrMiss is returned by backends when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend is the storage layer behind a Cache. Implementations must be safe
// for concurrent use and treat expired entries as absent.
type Backend interface {
	// Get returns the stored value, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A non-positive TTL means the
	// entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys, ignoring ones that are absent.
	Delete(ctx context.Context, keys ...string) error

	// Keys returns all live keys.
	Keys(ctx context.Context) ([]string, error)

	// OldestEntryAge reports how long ago the oldest live entry was
	// stored. Zero when the cache is empty.
	OldestEntryAge(ctx context.Context) (time.Duration, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`

	// OldestEntryAge is the age of the oldest live entry in seconds,
	// zero when the cache is empty.
	OldestEntryAge float64 `json:"oldest_entry_age"`

	HitRate float64 `json:"hit_rate"`
	Bypass  bool    `json:"bypass"`
}

// Cache is a JSON-encoding TTL cache. Reads honor the bypass switch so
// operators can force fresh generation without losing writes; writes always
// reach the backend.
type Cache struct {
	backend Backend
	logger  *slog.Logger

	bypass atomic.Bool
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Cache over the given backend.
func New(backend Backend, bypass bool, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		backend: backend,
		logger:  logger.With(slog.String("component", "cache")),
	}
	c.bypass.Store(bypass)
	return c
}

// Get looks up key and decodes the cached value into out. It returns false
// on a miss, on an expired entry, or while bypass is enabled. Bypassed
// reads do not count toward the miss statistics.
func (c *Cache) Get(ctx context.Context, key string, out any) (bool, error) {
	if c.bypass.Load() {
		return false, nil
	}

	data, err := c.backend.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		c.misses.Add(1)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		// A corrupt entry is as good as absent; drop it so the next
		// write replaces it.
		c.misses.Add(1)
		c.logger.Warn("dropping undecodable cache entry", slog.String("key", key))
		_ = c.backend.Delete(ctx, key)
		return false, nil
	}
	c.hits.Add(1)
	return true, nil
}

// Set encodes value as JSON and stores it under key with the given TTL.
// Writes are unaffected by the bypass switch.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	if err := c.backend.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.backend.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// InvalidateMatching removes every key the predicate accepts and returns
// how many were removed.
func (c *Cache) InvalidateMatching(ctx context.Context, match func(key string) bool) (int, error) {
	keys, err := c.backend.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache keys: %w", err)
	}
	var doomed []string
	for _, key := range keys {
		if match(key) {
			doomed = append(doomed, key)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}
	if err := c.backend.Delete(ctx, doomed...); err != nil {
		return 0, fmt.Errorf("cache invalidate: %w", err)
	}
	return len(doomed), nil
}

// CountMatching reports how many live keys the predicate accepts.
func (c *Cache) CountMatching(ctx context.Context, match func(key string) bool) (int, error) {
	keys, err := c.backend.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache keys: %w", err)
	}
	count := 0
	for _, key := range keys {
		if match(key) {
			count++
		}
	}
	return count, nil
}

// Clear removes all entries and resets the hit/miss counters.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.backend.Clear(ctx); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	c.hits.Store(0)
	c.misses.Store(0)
	return nil
}

// Stats reports entry count, oldest entry age, hit/miss counters, and the
// bypass state.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	keys, err := c.backend.Keys(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("cache keys: %w", err)
	}
	oldest, err := c.backend.OldestEntryAge(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("cache oldest entry age: %w", err)
	}
	hits := c.hits.Load()
	misses := c.misses.Load()
	stats := Stats{
		Entries:        len(keys),
		Hits:           hits,
		Misses:         misses,
		OldestEntryAge: oldest.Seconds(),
		Bypass:         c.bypass.Load(),
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats, nil
}

// SetBypass toggles the global read bypass.
func (c *Cache) SetBypass(on bool) {
	c.bypass.Store(on)
}

// BypassEnabled reports whether reads currently bypass the cache.
func (c *Cache) BypassEnabled() bool {
	return c.bypass.Load()
}

// Key builds a deterministic cache key from a namespace and its parts.
// Parts are hashed, so equal inputs always map to the same key regardless
// of length or characters.
func Key(namespace string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return namespace + ":" + hex.EncodeToString(sum[:16])
}
