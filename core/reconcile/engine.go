package reconcile

import (
	"context"
	"errors"
	"sort"

	"objectfs/core/storage"
)

// ReconcileAll compares every key under the spec prefix on both engines.
// Results are sorted by key.
func ReconcileAll(ctx context.Context, spec *Spec) ([]Result, error) {
	cache, err := BuildCache(ctx, spec)
	if err != nil {
		return nil, err
	}
	return reconcileFromCache(cache, spec), nil
}

// ReconcileOne compares a single key. It uses cached indices when the spec
// enables caching, and two HEAD calls otherwise.
func ReconcileOne(ctx context.Context, spec *Spec, key string) (*Result, error) {
	if spec.CacheTTL > 0 {
		cache, err := GetOrBuildCache(ctx, spec)
		if err != nil {
			return nil, err
		}
		result := buildResult(key, cache.Source, cache.Destination, spec.comparators())
		return &result, nil
	}

	src, err := headIndex(ctx, spec.Source, key)
	if err != nil {
		return nil, err
	}
	dst, err := headIndex(ctx, spec.Destination, key)
	if err != nil {
		return nil, err
	}
	result := buildResult(key, src, dst, spec.comparators())
	return &result, nil
}

// headIndex returns a one-entry index for key, or an empty one when the key
// does not exist.
func headIndex(ctx context.Context, e *storage.Engine, key string) (map[string]storage.Object, error) {
	obj, err := e.Head(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return map[string]storage.Object{}, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string]storage.Object{key: obj}, nil
}

func reconcileFromCache(cache *Cache, spec *Spec) []Result {
	union := buildUnion(cache.Source, cache.Destination)

	results := make([]Result, 0, len(union))
	for key := range union {
		results = append(results, buildResult(key, cache.Source, cache.Destination, spec.comparators()))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})
	return results
}

func buildUnion(src, dst map[string]storage.Object) map[string]struct{} {
	union := make(map[string]struct{}, len(src))
	for key := range src {
		union[key] = struct{}{}
	}
	for key := range dst {
		union[key] = struct{}{}
	}
	return union
}

func buildResult(key string, src, dst map[string]storage.Object, cs []Comparator) Result {
	srcObj, srcPresent := src[key]
	dstObj, dstPresent := dst[key]

	result := Result{
		Key:                key,
		SourcePresent:      srcPresent,
		DestinationPresent: dstPresent,
		Mismatch:           []string{},
	}
	switch {
	case srcPresent:
		result.Size, result.Dir = srcObj.Size, srcObj.IsDir()
	case dstPresent:
		result.Size, result.Dir = dstObj.Size, dstObj.IsDir()
	}

	if srcPresent && dstPresent {
		result.Mismatch = compareAll(cs, srcObj, dstObj)
	}
	return result
}
