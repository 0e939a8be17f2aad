package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Driver is implemented once per backend. The engine never contains
// backend-specific logic; drivers normalize their native metadata into
// Object and their native failures into the Err* kinds.
type Driver interface {
	// String describes the backend, e.g. "file:///data/".
	String() string
	// Create provisions the root location (directory, bucket, table).
	Create(ctx context.Context) error
	// Head returns the metadata of key or ErrNotFound.
	Head(ctx context.Context, key string) (Object, error)
	// List returns at most limit objects with the given prefix whose keys
	// are strictly greater than marker, in ascending key order.
	List(ctx context.Context, prefix, marker string, limit int64) ([]Object, error)
	// Get opens key for reading at off. A negative limit reads to the end.
	Get(ctx context.Context, key string, off, limit int64) (io.ReadCloser, error)
	// Put stores everything read from r at key. The object must become
	// visible only if Put returns nil.
	Put(ctx context.Context, key string, r io.Reader) error
	// Delete removes key. Drivers return ErrNotFound when they can tell.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources such as connection pools.
	Close() error
}

// StreamWriter is a push-based sink that commits on Close and discards
// everything on Abort.
type StreamWriter interface {
	io.WriteCloser
	Abort() error
}

// WriterOpener is implemented by drivers that can stream writes natively
// without a background Put.
type WriterOpener interface {
	OpenWrite(ctx context.Context, key string) (StreamWriter, error)
}

// Factory builds a driver from a configuration. It may dial the backend.
type Factory func(ctx context.Context, cfg Config) (Driver, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a driver available under name. It panics when called
// twice for the same name, like database/sql.Register.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("storage: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("storage: Register called twice for driver " + name)
	}
	registry[name] = factory
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		return nil, NewError("create", "", ErrUnknownBackend, fmt.Errorf("%q (known: %v)", name, keysLocked()))
	}
	return factory, nil
}

func keysLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
