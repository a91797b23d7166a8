package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Requires Redis on localhost:6379; skipped otherwise.
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T, ttl time.Duration) *LoadCache {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	c := New(client, "test:"+t.Name()+":", ttl)
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	t.Cleanup(func() {
		c.Flush(context.Background())
		client.Close()
	})
	return c
}

func TestLoadCache_SetAndGetCounts(t *testing.T) {
	ctx := context.Background()
	c := setupTestCache(t, time.Minute)

	if err := c.SetCounts(ctx, map[string]int64{"alice": 2, "bob": 0}); err != nil {
		t.Fatalf("SetCounts() error = %v", err)
	}

	counts, missing, err := c.GetCounts(ctx, []string{"alice", "bob", "charlie"})
	if err != nil {
		t.Fatalf("GetCounts() error = %v", err)
	}
	if counts["alice"] != 2 {
		t.Errorf("counts[alice] = %d, want 2", counts["alice"])
	}
	if n, ok := counts["bob"]; !ok || n != 0 {
		t.Errorf("counts[bob] = %d (present %v), want 0 present", n, ok)
	}
	if len(missing) != 1 || missing[0] != "charlie" {
		t.Errorf("missing = %v, want [charlie]", missing)
	}

	stats := c.GetStats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Sets != 2 {
		t.Errorf("stats = %+v, want 2 hits, 1 miss, 2 sets", stats)
	}
}

func TestLoadCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := setupTestCache(t, time.Minute)

	if err := c.SetCounts(ctx, map[string]int64{"alice": 3, "bob": 1}); err != nil {
		t.Fatalf("SetCounts() error = %v", err)
	}
	if err := c.Invalidate(ctx, "alice", ""); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}

	counts, missing, err := c.GetCounts(ctx, []string{"alice", "bob"})
	if err != nil {
		t.Fatalf("GetCounts() error = %v", err)
	}
	if _, ok := counts["alice"]; ok {
		t.Error("alice should have been invalidated")
	}
	if counts["bob"] != 1 {
		t.Errorf("counts[bob] = %d, want 1", counts["bob"])
	}
	if len(missing) != 1 || missing[0] != "alice" {
		t.Errorf("missing = %v, want [alice]", missing)
	}
}

func TestLoadCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := setupTestCache(t, 100*time.Millisecond)

	if err := c.SetCounts(ctx, map[string]int64{"alice": 1}); err != nil {
		t.Fatalf("SetCounts() error = %v", err)
	}
	time.Sleep(250 * time.Millisecond)

	_, missing, err := c.GetCounts(ctx, []string{"alice"})
	if err != nil {
		t.Fatalf("GetCounts() error = %v", err)
	}
	if len(missing) != 1 {
		t.Errorf("expected alice to expire, missing = %v", missing)
	}
}

func TestLoadCache_Flush(t *testing.T) {
	ctx := context.Background()
	c := setupTestCache(t, time.Minute)

	if err := c.SetCounts(ctx, map[string]int64{"a": 1, "b": 2, "c": 3}); err != nil {
		t.Fatalf("SetCounts() error = %v", err)
	}
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	counts, _, err := c.GetCounts(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("GetCounts() error = %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("counts after Flush = %v, want none", counts)
	}
}

func TestLoadCache_EmptyInputs(t *testing.T) {
	ctx := context.Background()
	c := New(redis.NewClient(&redis.Options{Addr: testRedisAddr}), "unused:", time.Minute)

	counts, missing, err := c.GetCounts(ctx, nil)
	if err != nil || len(counts) != 0 || len(missing) != 0 {
		t.Errorf("GetCounts(nil) = %v, %v, %v", counts, missing, err)
	}
	if err := c.SetCounts(ctx, nil); err != nil {
		t.Errorf("SetCounts(nil) error = %v", err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Errorf("Invalidate() error = %v", err)
	}
}
