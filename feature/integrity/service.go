package integrity

import (
	"context"
	"errors"

	"objectfs/core/storage"
	"objectfs/core/storage/sqlblob"
	"objectfs/feature/integrity/checks"

	"go.uber.org/zap"
)

// ErrSkipped is returned by checks that do not apply to the backend or
// would mutate a read-only one.
var ErrSkipped = errors.New("check skipped")

// Service handles integrity checks.
type Service struct {
	engine   *storage.Engine
	logger   *zap.Logger
	readOnly bool
}

// NewService creates a new integrity service.
func NewService(engine *storage.Engine, logger *zap.Logger, readOnly bool) *Service {
	return &Service{
		engine:   engine,
		logger:   logger,
		readOnly: readOnly,
	}
}

// CheckStructure reports whether the root is reachable and which of dirs
// are missing.
func (s *Service) CheckStructure(ctx context.Context, dirs []string) (*checks.StructureReport, error) {
	return checks.CheckStructure(ctx, s.engine, dirs)
}

// FixStructure creates the root and the missing directories.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.readOnly {
		return ErrSkipped
	}
	return checks.FixStructure(ctx, s.engine, s.logger, missing)
}

// CheckRoundTrip runs the write/read/remove probe.
func (s *Service) CheckRoundTrip(ctx context.Context) (*checks.RoundTripReport, error) {
	if s.readOnly {
		return nil, ErrSkipped
	}
	return checks.CheckRoundTrip(ctx, s.engine)
}

// CheckPagination compares paged and full listings of prefix.
func (s *Service) CheckPagination(ctx context.Context, prefix string, pageSize int64) (*checks.PaginationReport, error) {
	return checks.CheckPagination(ctx, s.engine, prefix, pageSize)
}

// CheckSchema validates the blob table of SQL backends.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	store, ok := s.engine.Driver().(*sqlblob.Store)
	if !ok {
		return nil, ErrSkipped
	}
	return checks.CheckSchema(store.DB())
}
