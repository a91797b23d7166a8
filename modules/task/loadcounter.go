package task

import (
	"context"
	"log"
	"slices"
	"strings"

	"golang.org/x/sync/singleflight"
)

// LoadCounter reports how many tasks each user holds.
type LoadCounter interface {
	Counts(ctx context.Context, userIDs []string) (map[string]int64, error)
	Invalidate(ctx context.Context, userIDs ...string)
}

// CountCache caches per-user counts. *cache.LoadCache implements it.
type CountCache interface {
	GetCounts(ctx context.Context, userIDs []string) (map[string]int64, []string, error)
	SetCounts(ctx context.Context, counts map[string]int64) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// storeLoadCounter counts straight from the task store.
type storeLoadCounter struct {
	store *Store
}

// NewStoreLoadCounter returns a LoadCounter that queries the store on every call.
func NewStoreLoadCounter(store *Store) LoadCounter {
	return &storeLoadCounter{store: store}
}

func (c *storeLoadCounter) Counts(ctx context.Context, userIDs []string) (map[string]int64, error) {
	return c.store.CountByAssignee(ctx, userIDs)
}

func (c *storeLoadCounter) Invalidate(context.Context, ...string) {}

// cachedLoadCounter reads through a CountCache. Misses for the same set of
// users are collapsed into one store query. Cache errors fall back to the
// store; they never fail the caller.
type cachedLoadCounter struct {
	store *Store
	cache CountCache
	group singleflight.Group
}

// NewCachedLoadCounter returns a LoadCounter backed by cache. The engine
// invalidates a user's entry whenever that user's task count changes.
func NewCachedLoadCounter(store *Store, cache CountCache) LoadCounter {
	return &cachedLoadCounter{store: store, cache: cache}
}

func (c *cachedLoadCounter) Counts(ctx context.Context, userIDs []string) (map[string]int64, error) {
	counts, missing, err := c.cache.GetCounts(ctx, userIDs)
	if err != nil {
		log.Printf("[task] Load cache read failed, counting from store: %v", err)
		return c.store.CountByAssignee(ctx, userIDs)
	}
	if len(missing) == 0 {
		return counts, nil
	}

	key := missingKey(missing)
	v, err, _ := c.group.Do(key, func() (any, error) {
		fresh, err := c.store.CountByAssignee(ctx, missing)
		if err != nil {
			return nil, err
		}
		if err := c.cache.SetCounts(ctx, fresh); err != nil {
			log.Printf("[task] Failed to cache load counts: %v", err)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	for id, n := range v.(map[string]int64) {
		counts[id] = n
	}
	return counts, nil
}

func (c *cachedLoadCounter) Invalidate(ctx context.Context, userIDs ...string) {
	if err := c.cache.Invalidate(ctx, userIDs...); err != nil {
		log.Printf("[task] Failed to invalidate load counts for %v: %v", userIDs, err)
	}
}

func missingKey(ids []string) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}
