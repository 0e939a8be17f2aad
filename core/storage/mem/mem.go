// Package mem implements an in-memory storage driver, registered as "mem".
//
// Every engine created with the mem backend owns a private key space that
// lives as long as the engine. It is intended for tests and for pipelines
// that need a scratch area.
package mem

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"objectfs/core/storage"
)

func init() {
	storage.Register("mem", func(ctx context.Context, cfg storage.Config) (storage.Driver, error) {
		return New(cfg.Endpoint), nil
	})
}

type object struct {
	data  []byte
	mtime time.Time
}

// Store keeps objects in a map guarded by a RWMutex.
type Store struct {
	name    string
	mu      sync.RWMutex
	objects map[string]*object
}

// New creates an empty store.
func New(name string) *Store {
	return &Store{name: name, objects: make(map[string]*object)}
}

func (s *Store) String() string {
	return fmt.Sprintf("mem://%s/", s.name)
}

// Create is a no-op: the store exists as soon as it is constructed.
func (s *Store) Create(ctx context.Context) error {
	return nil
}

func (s *Store) Head(ctx context.Context, key string) (storage.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return storage.Object{}, storage.NewError("head", key, storage.ErrNotFound, nil)
	}
	return storage.Object{
		Key:   key,
		Size:  int64(len(o.data)),
		Mtime: o.mtime,
		Dir:   strings.HasSuffix(key, "/"),
	}, nil
}

func (s *Store) List(ctx context.Context, prefix, marker string, limit int64) ([]storage.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) && k > marker {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if int64(len(keys)) > limit {
		keys = keys[:limit]
	}

	objs := make([]storage.Object, 0, len(keys))
	for _, k := range keys {
		o := s.objects[k]
		objs = append(objs, storage.Object{
			Key:   k,
			Size:  int64(len(o.data)),
			Mtime: o.mtime,
			Dir:   strings.HasSuffix(k, "/"),
		})
	}
	return objs, nil
}

func (s *Store) Get(ctx context.Context, key string, off, limit int64) (io.ReadCloser, error) {
	s.mu.RLock()
	o, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.NewError("get", key, storage.ErrNotFound, nil)
	}
	// Committed data is never mutated in place, so the slice can be shared.
	data := o.data
	if off > int64(len(data)) {
		off = int64(len(data))
	}
	data = data[off:]
	if limit >= 0 && limit < int64(len(data)) {
		data = data[:limit]
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if strings.HasSuffix(key, "/") && len(data) > 0 {
		return storage.NewError("put", key, storage.ErrInvalidArgument, fmt.Errorf("directory key with %d bytes", len(data)))
	}
	s.mu.Lock()
	s.objects[key] = &object{data: data, mtime: time.Now()}
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return storage.NewError("delete", key, storage.ErrNotFound, nil)
	}
	delete(s.objects, key)
	return nil
}

func (s *Store) Close() error {
	return nil
}
