package cmd

import (
	"context"
	"fmt"

	"objectfs/core/config"
	"objectfs/core/logger"
	"objectfs/core/storage"

	"go.uber.org/zap"

	_ "objectfs/core/storage/drivers"
)

// session bundles what every command needs.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	engine *storage.Engine
}

// applyStorageFlags copies non-empty global flags over cfg.
func applyStorageFlags(cfg *storage.Config) {
	if storageFlags.backend != "" {
		cfg.Backend = storageFlags.backend
	}
	if storageFlags.endpoint != "" {
		cfg.Endpoint = storageFlags.endpoint
	}
	if storageFlags.accessKey != "" {
		cfg.AccessKey = storageFlags.accessKey
	}
	if storageFlags.secretKey != "" {
		cfg.SecretKey = storageFlags.secretKey
	}
	if storageFlags.token != "" {
		cfg.Token = storageFlags.token
	}
}

// openSession loads the configuration, builds the logger and opens the
// engine. The caller closes it with Close.
func openSession(ctx context.Context, opts ...storage.Option) (*session, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStorageFlags(&cfg.Storage)

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	opts = append([]storage.Option{storage.WithLogger(logg)}, opts...)
	engine, err := storage.New(ctx, cfg.Storage, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage engine: %w", err)
	}
	return &session{cfg: cfg, logger: logg, engine: engine}, nil
}

// Close releases the engine and flushes the logger.
func (s *session) Close() {
	if err := s.engine.Close(); err != nil {
		s.logger.Warn("Failed to close storage engine", zap.Error(err))
	}
	_ = s.logger.Sync()
}
