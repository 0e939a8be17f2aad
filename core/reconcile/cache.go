package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"objectfs/core/storage"

	"golang.org/x/sync/singleflight"
)

// Cache holds the listings of both engines.
type Cache struct {
	// Source indexes source objects by key.
	Source map[string]storage.Object

	// Destination indexes destination objects by key.
	Destination map[string]storage.Object

	// Built is the timestamp when this cache was built.
	Built time.Time

	// TTL is the time-to-live for this cache.
	TTL time.Duration
}

// IsExpired reports whether the cache must be rebuilt. A zero TTL is
// always expired.
func (c *Cache) IsExpired() bool {
	if c.TTL == 0 {
		return true
	}
	return time.Since(c.Built) > c.TTL
}

type cacheStore struct {
	mu     sync.RWMutex
	caches map[string]*Cache
	sf     singleflight.Group
}

var globalCacheStore = &cacheStore{
	caches: make(map[string]*Cache),
}

// BuildCache lists both engines concurrently. It does not store the result;
// use GetOrBuildCache for that.
func BuildCache(ctx context.Context, spec *Spec) (*Cache, error) {
	var (
		srcIndex, dstIndex map[string]storage.Object
		srcErr, dstErr     error
		wg                 sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		srcIndex, srcErr = loadIndex(ctx, spec.Source, spec.Prefix)
	}()
	go func() {
		defer wg.Done()
		dstIndex, dstErr = loadIndex(ctx, spec.Destination, spec.Prefix)
	}()
	wg.Wait()

	if srcErr != nil {
		return nil, fmt.Errorf("failed to list source %s: %w", spec.Source, srcErr)
	}
	if dstErr != nil {
		return nil, fmt.Errorf("failed to list destination %s: %w", spec.Destination, dstErr)
	}

	return &Cache{
		Source:      srcIndex,
		Destination: dstIndex,
		Built:       time.Now(),
		TTL:         spec.CacheTTL,
	}, nil
}

// loadIndex lists every object under prefix. A destination whose root does
// not exist yet lists as empty on every driver.
func loadIndex(ctx context.Context, e *storage.Engine, prefix string) (map[string]storage.Object, error) {
	index := make(map[string]storage.Object)
	err := e.Walk(ctx, prefix, "", func(obj storage.Object) error {
		index[obj.Key] = obj
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// GetOrBuildCache returns the cached indices for spec, building them when
// missing or expired. Concurrent callers share one build.
func GetOrBuildCache(ctx context.Context, spec *Spec) (*Cache, error) {
	cacheKey := spec.CacheKey()

	globalCacheStore.mu.RLock()
	cache, exists := globalCacheStore.caches[cacheKey]
	globalCacheStore.mu.RUnlock()

	if exists && !cache.IsExpired() {
		return cache, nil
	}

	result, err, _ := globalCacheStore.sf.Do(cacheKey, func() (interface{}, error) {
		globalCacheStore.mu.RLock()
		cache, exists := globalCacheStore.caches[cacheKey]
		globalCacheStore.mu.RUnlock()

		if exists && !cache.IsExpired() {
			return cache, nil
		}

		newCache, err := BuildCache(ctx, spec)
		if err != nil {
			return nil, err
		}

		globalCacheStore.mu.Lock()
		globalCacheStore.caches[cacheKey] = newCache
		globalCacheStore.mu.Unlock()

		return newCache, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*Cache), nil
}

// InvalidateCache drops the cached indices of spec.
func InvalidateCache(spec *Spec) {
	cacheKey := spec.CacheKey()
	globalCacheStore.mu.Lock()
	delete(globalCacheStore.caches, cacheKey)
	globalCacheStore.mu.Unlock()
}
