// Package cache provides a Redis read-through cache of per-user task counts.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoadCache stores task counts keyed by user id.
type LoadCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  Stats
}

// Stats tracks cache statistics.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Sets          uint64
	Invalidations uint64
	Errors        uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	Sets          uint64  `json:"sets"`
	Invalidations uint64  `json:"invalidations"`
	Errors        uint64  `json:"errors"`
	HitRate       float64 `json:"hit_rate"`
}

// New creates a LoadCache. Keys are prefix + user id.
func New(client *redis.Client, prefix string, ttl time.Duration) *LoadCache {
	return &LoadCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *LoadCache) key(userID string) string {
	return c.prefix + userID
}

// GetCounts returns the cached count of every user in userIDs that has one,
// and the ids that missed.
func (c *LoadCache) GetCounts(ctx context.Context, userIDs []string) (map[string]int64, []string, error) {
	counts := make(map[string]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = c.key(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return nil, nil, fmt.Errorf("cache get error: %w", err)
	}

	var missing []string
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, userIDs[i])
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			atomic.AddUint64(&c.stats.Errors, 1)
			missing = append(missing, userIDs[i])
			continue
		}
		counts[userIDs[i]] = n
	}

	atomic.AddUint64(&c.stats.Hits, uint64(len(counts)))
	atomic.AddUint64(&c.stats.Misses, uint64(len(missing)))
	return counts, missing, nil
}

// SetCounts stores counts with the cache TTL.
func (c *LoadCache) SetCounts(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, n := range counts {
			pipe.Set(ctx, c.key(id), n, c.ttl)
		}
		return nil
	})
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache set error: %w", err)
	}

	atomic.AddUint64(&c.stats.Sets, uint64(len(counts)))
	return nil
}

// Invalidate drops the cached counts of userIDs. Empty ids are ignored.
func (c *LoadCache) Invalidate(ctx context.Context, userIDs ...string) error {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			keys = append(keys, c.key(id))
		}
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache delete error: %w", err)
	}

	atomic.AddUint64(&c.stats.Invalidations, uint64(len(keys)))
	return nil
}

// Flush drops every count under the prefix.
func (c *LoadCache) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			atomic.AddUint64(&c.stats.Errors, 1)
			return fmt.Errorf("cache scan error: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				atomic.AddUint64(&c.stats.Errors, 1)
				return fmt.Errorf("cache delete error: %w", err)
			}
			atomic.AddUint64(&c.stats.Invalidations, uint64(len(keys)))
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// GetStats returns the current cache statistics.
func (c *LoadCache) GetStats() StatsSnapshot {
	hits := atomic.LoadUint64(&c.stats.Hits)
	misses := atomic.LoadUint64(&c.stats.Misses)

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return StatsSnapshot{
		Hits:          hits,
		Misses:        misses,
		Sets:          atomic.LoadUint64(&c.stats.Sets),
		Invalidations: atomic.LoadUint64(&c.stats.Invalidations),
		Errors:        atomic.LoadUint64(&c.stats.Errors),
		HitRate:       hitRate,
	}
}

// Ping checks if the Redis connection is healthy.
func (c *LoadCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
