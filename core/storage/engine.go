package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Observer receives one call per completed engine operation.
type Observer interface {
	Observe(op string, bytes int64, err error, dur time.Duration)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for operation tracing.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver sets the operation observer, typically core/metrics.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// Engine is the backend-agnostic storage facade. It is safe for concurrent
// use once New returns; Close must not race with other calls.
type Engine struct {
	cfg      Config
	driver   Driver
	logger   *zap.Logger
	observer Observer
	closed   atomic.Bool
}

// New validates cfg.Backend against the driver registry and builds the
// driver. It does not require the storage root to exist.
func New(ctx context.Context, cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()
	factory, err := lookup(cfg.Backend)
	if err != nil {
		return nil, err
	}
	driver, err := factory(ctx, cfg)
	if err != nil {
		return nil, NewError("create", "", ErrConnection, err)
	}
	return NewWithDriver(driver, cfg, opts...), nil
}

// Create is the positional constructor used at process boundaries.
func Create(ctx context.Context, backend, endpoint, accessKey, secretKey, token string, opts ...Option) (*Engine, error) {
	return New(ctx, Config{
		Backend:   backend,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Token:     token,
	}, opts...)
}

// NewWithDriver binds an already constructed driver.
func NewWithDriver(driver Driver, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg.withDefaults(),
		driver: driver,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("storage", driver.String()))
	return e
}

// String describes the bound backend. It performs no I/O.
func (e *Engine) String() string { return e.driver.String() }

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Driver returns the bound driver.
func (e *Engine) Driver() Driver { return e.driver }

func (e *Engine) observe(op string, start time.Time, n int64, err error) {
	if e.observer != nil {
		e.observer.Observe(op, n, err, time.Since(start))
	}
	if err != nil {
		e.logger.Debug("storage operation failed", zap.String("op", op), zap.Error(err))
	}
}

func (e *Engine) check(op, key string) error {
	if e.closed.Load() {
		return NewError(op, key, ErrInvalidState, errors.New("engine is closed"))
	}
	return nil
}

func checkKey(op, key string) error {
	if key == "" {
		return NewError(op, key, ErrInvalidArgument, errors.New("empty key"))
	}
	return nil
}

// CreateRoot provisions the storage root. It is idempotent.
func (e *Engine) CreateRoot(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { e.observe("create", start, 0, err) }()
	if err = e.check("create", ""); err != nil {
		return err
	}
	if err = e.driver.Create(ctx); err != nil && !errors.Is(err, ErrAlreadyExists) {
		return NewError("create", "", ErrIOFailure, err)
	}
	return nil
}

// Head returns the current metadata of key.
func (e *Engine) Head(ctx context.Context, key string) (obj Object, err error) {
	start := time.Now()
	defer func() { e.observe("head", start, 0, err) }()
	if err = e.check("head", key); err != nil {
		return Object{}, err
	}
	if err = checkKey("head", key); err != nil {
		return Object{}, err
	}
	obj, err = e.driver.Head(ctx, key)
	if err != nil {
		return Object{}, NewError("head", key, ErrIOFailure, err)
	}
	return obj, nil
}

// List returns one page of at most limit objects under prefix with keys
// strictly greater than marker.
func (e *Engine) List(ctx context.Context, prefix, marker string, limit int64) (page Page, err error) {
	start := time.Now()
	defer func() { e.observe("list", start, 0, err) }()
	if err = e.check("list", prefix); err != nil {
		return Page{}, err
	}
	if limit <= 0 {
		return Page{}, NewError("list", prefix, ErrInvalidArgument, fmt.Errorf("limit %d must be positive", limit))
	}
	objs, err := e.driver.List(ctx, prefix, marker, limit)
	if err != nil {
		return Page{}, NewError("list", prefix, ErrIOFailure, err)
	}
	if err = validatePage(prefix, marker, limit, objs); err != nil {
		return Page{}, err
	}
	page = Page{Objects: objs, Truncated: int64(len(objs)) == limit}
	if len(objs) > 0 {
		page.NextMarker = objs[len(objs)-1].Key
	}
	return page, nil
}

func validatePage(prefix, marker string, limit int64, objs []Object) error {
	if int64(len(objs)) > limit {
		return NewError("list", prefix, ErrProtocolViolation, fmt.Errorf("driver returned %d entries for limit %d", len(objs), limit))
	}
	prev := marker
	for i, o := range objs {
		if !strings.HasPrefix(o.Key, prefix) {
			return NewError("list", prefix, ErrProtocolViolation, fmt.Errorf("key %q outside prefix", o.Key))
		}
		if (i > 0 || marker != "") && o.Key <= prev {
			return NewError("list", prefix, ErrProtocolViolation, fmt.Errorf("key %q not after %q", o.Key, prev))
		}
		prev = o.Key
	}
	return nil
}

// Walk calls fn for every object under prefix after marker, paging
// internally. A truncated page that does not advance the marker is a
// ProtocolViolation.
func (e *Engine) Walk(ctx context.Context, prefix, marker string, fn func(Object) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return NewError("list", prefix, ErrIOFailure, err)
		}
		page, err := e.List(ctx, prefix, marker, e.cfg.ListPageSize)
		if err != nil {
			return err
		}
		for _, o := range page.Objects {
			if err := fn(o); err != nil {
				return err
			}
		}
		if !page.Truncated {
			return nil
		}
		if page.NextMarker <= marker {
			return NewError("list", prefix, ErrProtocolViolation, fmt.Errorf("marker did not advance past %q", marker))
		}
		marker = page.NextMarker
	}
}

// ListAll returns every object under prefix after marker.
func (e *Engine) ListAll(ctx context.Context, prefix, marker string) ([]Object, error) {
	objs := make([]Object, 0)
	err := e.Walk(ctx, prefix, marker, func(o Object) error {
		objs = append(objs, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objs, nil
}

// Read opens key for reading bytes [offset, offset+limit), clipped to the
// object size. A negative limit reads to the end.
func (e *Engine) Read(ctx context.Context, key string, offset, limit int64) (r *Reader, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			e.observe("read", start, 0, err)
		}
	}()
	if err = e.check("read", key); err != nil {
		return nil, err
	}
	if err = checkKey("read", key); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, NewError("read", key, ErrInvalidArgument, fmt.Errorf("negative offset %d", offset))
	}
	obj, err := e.driver.Head(ctx, key)
	if err != nil {
		return nil, NewError("read", key, ErrIOFailure, err)
	}
	if obj.IsDir() {
		return nil, NewError("read", key, ErrInvalidArgument, errors.New("key is a directory"))
	}
	if offset > obj.Size {
		return nil, NewError("read", key, ErrInvalidArgument, fmt.Errorf("offset %d beyond size %d", offset, obj.Size))
	}
	if limit < 0 || limit > obj.Size-offset {
		limit = obj.Size - offset
	}
	onClose := func(n int64, cerr error) { e.observe("read", start, n, cerr) }
	if limit == 0 {
		return newReader(key, emptyReader{}, onClose), nil
	}
	rc, err := e.driver.Get(ctx, key, offset, limit)
	if err != nil {
		return nil, NewError("read", key, ErrIOFailure, err)
	}
	return newReader(key, rc, onClose), nil
}

// Write opens a fresh write stream at key. Existing content is replaced
// only when the returned Writer closes successfully.
func (e *Engine) Write(ctx context.Context, key string) (w *Writer, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			e.observe("write", start, 0, err)
		}
	}()
	if err = e.check("write", key); err != nil {
		return nil, err
	}
	if err = checkKey("write", key); err != nil {
		return nil, err
	}
	onClose := func(n int64, cerr error) { e.observe("write", start, n, cerr) }
	if opener, ok := e.driver.(WriterOpener); ok {
		sw, err := opener.OpenWrite(ctx, key)
		if err != nil {
			return nil, NewError("write", key, ErrIOFailure, err)
		}
		return newWriter(key, sw, onClose), nil
	}

	pr, pw := NewPipe(e.cfg.PipeBufferSize)
	done := make(chan error, 1)
	go func() {
		perr := e.driver.Put(ctx, key, pr)
		_ = pr.CloseWithError(perr)
		done <- perr
	}()
	return newWriter(key, &putWriter{pw: pw, done: done}, onClose), nil
}

// Remove deletes key. With StrictRemove a missing key is ErrNotFound on
// every backend; otherwise removing a missing key succeeds.
func (e *Engine) Remove(ctx context.Context, key string) (err error) {
	start := time.Now()
	defer func() { e.observe("remove", start, 0, err) }()
	if err = e.check("remove", key); err != nil {
		return err
	}
	if err = checkKey("remove", key); err != nil {
		return err
	}
	if e.cfg.StrictRemove {
		if _, err = e.driver.Head(ctx, key); err != nil {
			return NewError("remove", key, ErrIOFailure, err)
		}
	}
	err = e.driver.Delete(ctx, key)
	if errors.Is(err, ErrNotFound) && !e.cfg.StrictRemove {
		err = nil
	}
	if err != nil {
		return NewError("remove", key, ErrIOFailure, err)
	}
	return nil
}

// WriteReader drains r into key. Ownership of r moves to the engine: when
// r is an io.Closer it is closed on return, whatever the outcome.
func (e *Engine) WriteReader(ctx context.Context, key string, r io.Reader) (err error) {
	start := time.Now()
	counter := &countingReader{r: r}
	defer func() { e.observe("write", start, counter.n, err) }()
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	if err = e.check("write", key); err != nil {
		return err
	}
	if err = checkKey("write", key); err != nil {
		return err
	}
	if r == nil {
		return NewError("write", key, ErrInvalidArgument, errors.New("nil reader"))
	}
	if err = e.driver.Put(ctx, key, counter); err != nil {
		return NewError("write", key, ErrIOFailure, err)
	}
	return nil
}

// CreateReaderWriter allocates one pipe and returns its two ends.
func (e *Engine) CreateReaderWriter() (*Reader, *Writer) {
	pr, pw := NewPipe(e.cfg.PipeBufferSize)
	return newReader("", pr, nil), newWriter("", pw, nil)
}

// Copy streams srcKey from e into dstKey on dst through a pipe. The
// producer and the consumer run on separate goroutines.
func (e *Engine) Copy(ctx context.Context, srcKey string, dst *Engine, dstKey string) (int64, error) {
	src, err := e.Read(ctx, srcKey, 0, -1)
	if err != nil {
		return 0, err
	}
	pr, pw := e.CreateReaderWriter()

	var copied int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer src.Close()
		n, err := io.CopyBuffer(pw, src, make([]byte, e.cfg.CopyChunkSize))
		copied = n
		if err != nil {
			_ = pw.Abort()
			return err
		}
		return pw.Close()
	})
	g.Go(func() error {
		return dst.WriteReader(gctx, dstKey, pr)
	})
	if err := g.Wait(); err != nil {
		return copied, err
	}
	e.logger.Debug("copied object",
		zap.String("src", srcKey),
		zap.String("dst", dstKey),
		zap.String("target", dst.String()),
		zap.Int64("bytes", copied))
	return copied, nil
}

// Close releases the driver. It is idempotent.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := e.driver.Close(); err != nil {
		return NewError("close", "", ErrIOFailure, err)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
