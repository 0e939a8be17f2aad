package mocks

import (
	"context"
	"io"

	"objectfs/core/storage"

	"github.com/stretchr/testify/mock"
)

// Driver is a mock implementation of storage.Driver
type Driver struct {
	mock.Mock
}

func (m *Driver) String() string {
	args := m.Called()
	return args.String(0)
}

func (m *Driver) Create(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Driver) Head(ctx context.Context, key string) (storage.Object, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(storage.Object), args.Error(1)
}

func (m *Driver) List(ctx context.Context, prefix, marker string, limit int64) ([]storage.Object, error) {
	args := m.Called(ctx, prefix, marker, limit)
	if objs, ok := args.Get(0).([]storage.Object); ok {
		return objs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Driver) Get(ctx context.Context, key string, off, limit int64) (io.ReadCloser, error) {
	args := m.Called(ctx, key, off, limit)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Driver) Put(ctx context.Context, key string, r io.Reader) error {
	args := m.Called(ctx, key, r)
	return args.Error(0)
}

func (m *Driver) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *Driver) Close() error {
	args := m.Called()
	return args.Error(0)
}
