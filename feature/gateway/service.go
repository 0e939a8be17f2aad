package gateway

import (
	"context"
	"errors"
	"io"

	"objectfs/core/storage"

	"go.uber.org/zap"
)

// ErrReadOnly rejects mutations on a read-only gateway.
var ErrReadOnly = storage.NewError("write", "", storage.ErrPermissionDenied, errors.New("gateway is read-only"))

// Service adapts the engine to the HTTP handlers.
type Service struct {
	engine   *storage.Engine
	logger   *zap.Logger
	readOnly bool
}

// NewService creates a new gateway service.
func NewService(engine *storage.Engine, logger *zap.Logger, readOnly bool) *Service {
	return &Service{
		engine:   engine,
		logger:   logger,
		readOnly: readOnly,
	}
}

// Describe returns the backend description.
func (s *Service) Describe() string {
	return s.engine.String()
}

// List returns one page, or every object after marker when all is set.
func (s *Service) List(ctx context.Context, prefix, marker string, limit int64, all bool) (storage.Page, error) {
	if !all {
		return s.engine.List(ctx, prefix, marker, limit)
	}
	objs, err := s.engine.ListAll(ctx, prefix, marker)
	if err != nil {
		return storage.Page{}, err
	}
	page := storage.Page{Objects: objs}
	if len(objs) > 0 {
		page.NextMarker = objs[len(objs)-1].Key
	}
	return page, nil
}

// Stat returns the metadata of key.
func (s *Service) Stat(ctx context.Context, key string) (storage.Object, error) {
	return s.engine.Head(ctx, key)
}

// Open returns a reader over [offset, offset+limit) of key and the number
// of bytes it will yield.
func (s *Service) Open(ctx context.Context, key string, offset, limit int64) (*storage.Reader, int64, error) {
	obj, err := s.engine.Head(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	r, err := s.engine.Read(ctx, key, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	n := obj.Size - offset
	if limit >= 0 && limit < n {
		n = limit
	}
	return r, n, nil
}

// Put replaces key with the content of body and returns its new metadata.
func (s *Service) Put(ctx context.Context, key string, body io.Reader) (storage.Object, error) {
	if s.readOnly {
		return storage.Object{}, ErrReadOnly
	}
	if err := s.engine.WriteReader(ctx, key, body); err != nil {
		return storage.Object{}, err
	}
	return s.engine.Head(ctx, key)
}

// Remove deletes key.
func (s *Service) Remove(ctx context.Context, key string) error {
	if s.readOnly {
		return ErrReadOnly
	}
	return s.engine.Remove(ctx, key)
}
