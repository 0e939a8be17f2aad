package storage_test

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"objectfs/core/storage"
	"objectfs/core/storage/mem"
	"objectfs/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type observation struct {
	op    string
	bytes int64
	err   error
}

type recorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recorder) Observe(op string, n int64, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{op: op, bytes: n, err: err})
}

func (r *recorder) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.obs))
	for i, o := range r.obs {
		out[i] = o.op
	}
	return out
}

func newMem(t *testing.T, cfg storage.Config, opts ...storage.Option) *storage.Engine {
	t.Helper()
	e := storage.NewWithDriver(mem.New(t.Name()), cfg, opts...)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func put(t *testing.T, e *storage.Engine, key, body string) {
	t.Helper()
	require.NoError(t, e.WriteReader(context.Background(), key, strings.NewReader(body)))
}

func readString(t *testing.T, e *storage.Engine, key string, off, limit int64) string {
	t.Helper()
	r, err := e.Read(context.Background(), key, off, limit)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func newMockEngine(objs []storage.Object) (*storage.Engine, *mocks.Driver) {
	d := new(mocks.Driver)
	d.On("String").Return("mock://")
	d.On("List", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(objs, nil)
	return storage.NewWithDriver(d, storage.Config{}), d
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := storage.New(context.Background(), storage.Config{Backend: "tape"})
	assert.ErrorIs(t, err, storage.ErrUnknownBackend)
}

func TestCreate_Positional(t *testing.T) {
	e, err := storage.Create(context.Background(), "mem", "scratch", "", "", "")
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, "mem://scratch/", e.String())
	assert.Equal(t, storage.DefaultListLimit, 10)
	assert.Equal(t, int64(1000), e.Config().ListPageSize)
	require.NoError(t, e.CreateRoot(context.Background()))
	require.NoError(t, e.CreateRoot(context.Background()))
}

func TestEngine_ListRejectsNonPositiveLimit(t *testing.T) {
	e := newMem(t, storage.Config{})
	for _, limit := range []int64{0, -1} {
		_, err := e.List(context.Background(), "", "", limit)
		assert.ErrorIs(t, err, storage.ErrInvalidArgument)
	}
}

func TestEngine_ListPages(t *testing.T) {
	ctx := context.Background()
	e := newMem(t, storage.Config{})
	for _, k := range []string{"e", "c", "a", "d", "b"} {
		put(t, e, k, k)
	}

	page, err := e.List(ctx, "", "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, page.Keys())
	assert.True(t, page.Truncated)
	assert.Equal(t, "b", page.NextMarker)

	page, err = e.List(ctx, "", page.NextMarker, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, page.Keys())
	assert.True(t, page.Truncated)

	page, err = e.List(ctx, "", page.NextMarker, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, page.Keys())
	assert.False(t, page.Truncated)
	assert.Equal(t, "e", page.NextMarker)
}

func TestEngine_ListExactLimitBoundary(t *testing.T) {
	ctx := context.Background()
	e := newMem(t, storage.Config{})
	for _, k := range []string{"a", "b", "c", "d"} {
		put(t, e, k, k)
	}

	page, err := e.List(ctx, "", "b", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, page.Keys())
	assert.True(t, page.Truncated)

	page, err = e.List(ctx, "", page.NextMarker, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Objects)
	assert.False(t, page.Truncated)
	assert.Equal(t, "", page.NextMarker)
}

func TestEngine_ListMarkerIsExclusive(t *testing.T) {
	ctx := context.Background()
	e := newMem(t, storage.Config{})
	for _, k := range []string{"a", "b", "c"} {
		put(t, e, k, k)
	}

	page, err := e.List(ctx, "", "b", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, page.Keys())

	page, err = e.List(ctx, "", "bb", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, page.Keys())
}

func TestEngine_ListPrefix(t *testing.T) {
	e := newMem(t, storage.Config{})
	for _, k := range []string{"img/", "img/a.png", "img/b.png", "imgs", "txt"} {
		body := "x"
		if strings.HasSuffix(k, "/") {
			body = ""
		}
		put(t, e, k, body)
	}

	page, err := e.List(context.Background(), "img/", "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"img/", "img/a.png", "img/b.png"}, page.Keys())
	assert.True(t, page.Objects[0].IsDir())
}

func TestEngine_ListProtocolViolations(t *testing.T) {
	cases := map[string]struct {
		prefix, marker string
		limit          int64
		objs           []storage.Object
	}{
		"too many entries": {limit: 1, objs: []storage.Object{{Key: "a"}, {Key: "b"}}},
		"out of order":     {limit: 5, objs: []storage.Object{{Key: "b"}, {Key: "a"}}},
		"duplicate key":    {limit: 5, objs: []storage.Object{{Key: "a"}, {Key: "a"}}},
		"outside prefix":   {prefix: "p/", limit: 5, objs: []storage.Object{{Key: "p/a"}, {Key: "q"}}},
		"marker repeated":  {marker: "a", limit: 5, objs: []storage.Object{{Key: "a"}, {Key: "b"}}},
		"before marker":    {marker: "m", limit: 5, objs: []storage.Object{{Key: "c"}}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e, _ := newMockEngine(tc.objs)
			_, err := e.List(context.Background(), tc.prefix, tc.marker, tc.limit)
			assert.ErrorIs(t, err, storage.ErrProtocolViolation)
		})
	}
}

func TestEngine_ListDriverErrorKeepsKind(t *testing.T) {
	d := new(mocks.Driver)
	d.On("String").Return("mock://")
	d.On("List", mock.Anything, "", "", int64(10)).
		Return(nil, storage.NewError("list", "", storage.ErrPermissionDenied, nil))
	e := storage.NewWithDriver(d, storage.Config{})

	_, err := e.List(context.Background(), "", "", 10)
	assert.ErrorIs(t, err, storage.ErrPermissionDenied)

	d2 := new(mocks.Driver)
	d2.On("String").Return("mock://")
	d2.On("List", mock.Anything, "", "", int64(10)).Return(nil, errors.New("socket closed"))
	e2 := storage.NewWithDriver(d2, storage.Config{})

	_, err = e2.List(context.Background(), "", "", 10)
	assert.ErrorIs(t, err, storage.ErrIOFailure)
}

func TestEngine_ListAllPagesInternally(t *testing.T) {
	e := newMem(t, storage.Config{ListPageSize: 3})
	want := make([]string, 0, 10)
	for _, k := range []string{"k0", "k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9"} {
		put(t, e, k, k)
		want = append(want, k)
	}

	objs, err := e.ListAll(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, objs, 10)
	for i, o := range objs {
		assert.Equal(t, want[i], o.Key)
	}

	objs, err = e.ListAll(context.Background(), "", "k6")
	require.NoError(t, err)
	assert.Len(t, objs, 3)

	objs, err = e.ListAll(context.Background(), "none/", "")
	require.NoError(t, err)
	assert.NotNil(t, objs)
	assert.Empty(t, objs)
}

func TestEngine_WalkStopsOnCallbackError(t *testing.T) {
	e := newMem(t, storage.Config{ListPageSize: 2})
	for _, k := range []string{"a", "b", "c"} {
		put(t, e, k, k)
	}
	stop := errors.New("stop")

	var seen []string
	err := e.Walk(context.Background(), "", "", func(o storage.Object) error {
		seen = append(seen, o.Key)
		if o.Key == "b" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"a", "b"}, seen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = e.Walk(ctx, "", "", func(storage.Object) error { return nil })
	assert.ErrorIs(t, err, storage.ErrIOFailure)
}

func TestEngine_HeadAndRead(t *testing.T) {
	ctx := context.Background()
	e := newMem(t, storage.Config{})
	put(t, e, "doc.txt", "0123456789")
	put(t, e, "dir/", "")

	obj, err := e.Head(ctx, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(10), obj.Size)
	assert.True(t, obj.IsFile())

	assert.Equal(t, "0123456789", readString(t, e, "doc.txt", 0, -1))
	assert.Equal(t, "345", readString(t, e, "doc.txt", 3, 3))
	assert.Equal(t, "789", readString(t, e, "doc.txt", 7, 100))
	assert.Equal(t, "", readString(t, e, "doc.txt", 10, -1))
	assert.Equal(t, "", readString(t, e, "doc.txt", 2, 0))

	_, err = e.Read(ctx, "doc.txt", 11, -1)
	assert.ErrorIs(t, err, storage.ErrInvalidArgument)
	_, err = e.Read(ctx, "doc.txt", -1, -1)
	assert.ErrorIs(t, err, storage.ErrInvalidArgument)
	_, err = e.Read(ctx, "dir/", 0, -1)
	assert.ErrorIs(t, err, storage.ErrInvalidArgument)
	_, err = e.Read(ctx, "", 0, -1)
	assert.ErrorIs(t, err, storage.ErrInvalidArgument)

	_, err = e.Read(ctx, "missing", 0, -1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	obj, err = e.Head(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, storage.Object{}, obj)
}

func TestEngine_ReadClipsHugeLimit(t *testing.T) {
	ctx := context.Background()
	d := new(mocks.Driver)
	d.On("String").Return("mock://")
	d.On("Head", mock.Anything, "k").Return(storage.Object{Key: "k", Size: 10}, nil)
	d.On("Get", mock.Anything, "k", int64(1), int64(9)).Return(io.NopCloser(strings.NewReader("123456789")), nil)
	e := storage.NewWithDriver(d, storage.Config{})

	r, err := e.Read(ctx, "k", 1, math.MaxInt64)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "123456789", string(data))
	d.AssertExpectations(t)

	m := newMem(t, storage.Config{})
	put(t, m, "doc.txt", "0123456789")
	assert.Equal(t, "23456789", readString(t, m, "doc.txt", 2, math.MaxInt64))
}

func TestEngine_WriteVisibleOnlyAfterClose(t *testing.T) {
	ctx := context.Background()
	e := newMem(t, storage.Config{PipeBufferSize: 4})

	w, err := e.Write(ctx, "report.csv")
	require.NoError(t, err)
	assert.Equal(t, "report.csv", w.Key())
	_, err = w.Write([]byte("a,b,c\n1,2,3\n"))
	require.NoError(t, err)

	_, err = e.Head(ctx, "report.csv")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, "a,b,c\n1,2,3\n", readString(t, e, "report.csv", 0, -1))

	_, err = w.Write([]byte("more"))
	assert.ErrorIs(t, err, storage.ErrInvalidState)
}

func TestEngine_WriteAbortLeavesNothing(t *testing.T) {
	ctx := context.Background()
	e := newMem(t, storage.Config{})
	put(t, e, "keep.txt", "old")

	w, err := e.Write(ctx, "keep.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	assert.Equal(t, "old", readString(t, e, "keep.txt", 0, -1))

	w, err = e.Write(ctx, "never.txt")
	require.NoError(t, err)
	require.NoError(t, w.Abort())
	_, err = e.Head(ctx, "never.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEngine_WriteCloseReportsPutFailure(t *testing.T) {
	d := new(mocks.Driver)
	d.On("String").Return("mock://")
	d.On("Put", mock.Anything, "k", mock.Anything).Return(storage.NewError("put", "k", storage.ErrPermissionDenied, nil))
	e := storage.NewWithDriver(d, storage.Config{})

	w, err := e.Write(context.Background(), "k")
	require.NoError(t, err)
	assert.ErrorIs(t, w.Close(), storage.ErrPermissionDenied)
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestEngine_WriteReader(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	e := newMem(t, storage.Config{}, storage.WithObserver(rec))

	src := &closeTracker{Reader: strings.NewReader("payload")}
	require.NoError(t, e.WriteReader(ctx, "p", src))
	assert.True(t, src.closed)
	assert.Equal(t, "payload", readString(t, e, "p", 0, -1))

	bad := &closeTracker{Reader: strings.NewReader("x")}
	assert.ErrorIs(t, e.WriteReader(ctx, "", bad), storage.ErrInvalidArgument)
	assert.True(t, bad.closed)

	assert.ErrorIs(t, e.WriteReader(ctx, "nil", nil), storage.ErrInvalidArgument)
	assert.ErrorIs(t, e.WriteReader(ctx, "dir/", strings.NewReader("data")), storage.ErrInvalidArgument)

	rec.mu.Lock()
	first := rec.obs[0]
	rec.mu.Unlock()
	assert.Equal(t, "write", first.op)
	assert.Equal(t, int64(7), first.bytes)
	assert.NoError(t, first.err)
}

func TestEngine_RemoveLenient(t *testing.T) {
	ctx := context.Background()
	e := newMem(t, storage.Config{})
	put(t, e, "a", "1")

	require.NoError(t, e.Remove(ctx, "a"))
	_, err := e.Head(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, e.Remove(ctx, "a"))
	assert.ErrorIs(t, e.Remove(ctx, ""), storage.ErrInvalidArgument)
}

func TestEngine_RemoveStrict(t *testing.T) {
	ctx := context.Background()
	e := newMem(t, storage.Config{StrictRemove: true})
	put(t, e, "a", "1")

	require.NoError(t, e.Remove(ctx, "a"))
	assert.ErrorIs(t, e.Remove(ctx, "a"), storage.ErrNotFound)
}

func TestEngine_RemoveStrictOnIdempotentBackend(t *testing.T) {
	d := new(mocks.Driver)
	d.On("String").Return("mock://")
	d.On("Head", mock.Anything, "gone").Return(storage.Object{}, storage.NewError("head", "gone", storage.ErrNotFound, nil))
	e := storage.NewWithDriver(d, storage.Config{StrictRemove: true})

	assert.ErrorIs(t, e.Remove(context.Background(), "gone"), storage.ErrNotFound)
	d.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestEngine_Copy(t *testing.T) {
	ctx := context.Background()
	src := newMem(t, storage.Config{CopyChunkSize: 3, PipeBufferSize: 5})
	dst := storage.NewWithDriver(mem.New("dst"), storage.Config{})
	defer dst.Close()

	body := strings.Repeat("objectfs ", 50)
	put(t, src, "in.txt", body)

	n, err := src.Copy(ctx, "in.txt", dst, "out.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), n)
	assert.Equal(t, body, readString(t, dst, "out.txt", 0, -1))

	n, err = src.Copy(ctx, "in.txt", src, "same.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), n)

	_, err = src.Copy(ctx, "missing", dst, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEngine_CreateReaderWriter(t *testing.T) {
	e := newMem(t, storage.Config{PipeBufferSize: 2})
	r, w := e.CreateReaderWriter()
	assert.Equal(t, "", r.Key())
	assert.Equal(t, "", w.Key())

	go func() {
		_, _ = w.Write([]byte("through the pipe"))
		_ = w.Close()
	}()
	require.NoError(t, e.WriteReader(context.Background(), "piped", r))
	assert.True(t, r.Closed())
	assert.Equal(t, "through the pipe", readString(t, e, "piped", 0, -1))
}

func TestEngine_Closed(t *testing.T) {
	ctx := context.Background()
	d := new(mocks.Driver)
	d.On("String").Return("mock://")
	d.On("Close").Return(nil).Once()
	e := storage.NewWithDriver(d, storage.Config{})

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	d.AssertNumberOfCalls(t, "Close", 1)

	_, err := e.Head(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrInvalidState)
	_, err = e.List(ctx, "", "", 1)
	assert.ErrorIs(t, err, storage.ErrInvalidState)
	_, err = e.Read(ctx, "a", 0, -1)
	assert.ErrorIs(t, err, storage.ErrInvalidState)
	_, err = e.Write(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrInvalidState)
	assert.ErrorIs(t, e.Remove(ctx, "a"), storage.ErrInvalidState)
	assert.ErrorIs(t, e.CreateRoot(ctx), storage.ErrInvalidState)
	assert.ErrorIs(t, e.WriteReader(ctx, "a", strings.NewReader("")), storage.ErrInvalidState)
}

func TestEngine_ObserverSeesOperations(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	e := newMem(t, storage.Config{}, storage.WithObserver(rec))

	put(t, e, "a", "abc")
	_, _ = e.Head(ctx, "a")
	_, _ = e.Head(ctx, "missing")
	_, _ = e.List(ctx, "", "", 5)
	_ = readString(t, e, "a", 0, -1)
	_ = e.Remove(ctx, "a")

	assert.Equal(t, []string{"write", "head", "head", "list", "read", "remove"}, rec.ops())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.ErrorIs(t, rec.obs[2].err, storage.ErrNotFound)
	assert.Equal(t, int64(3), rec.obs[4].bytes)
}
