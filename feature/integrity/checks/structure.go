package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"objectfs/core/storage"

	"go.uber.org/zap"
)

// StructureReport describes the state of the storage root.
type StructureReport struct {
	Root      string   `json:"root"`
	Reachable bool     `json:"reachable"`
	Missing   []string `json:"missing"`
}

// CheckStructure verifies that the root can be listed and that every
// directory in dirs exists.
func CheckStructure(ctx context.Context, engine *storage.Engine, dirs []string) (*StructureReport, error) {
	report := &StructureReport{Root: engine.String(), Missing: []string{}}

	if _, err := engine.List(ctx, "", "", 1); err != nil {
		return report, fmt.Errorf("failed to list root: %w", err)
	}
	report.Reachable = true

	for _, dir := range dirs {
		key := storage.DirKey(strings.TrimSpace(dir))
		if key == "/" {
			continue
		}
		obj, err := engine.Head(ctx, key)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			report.Missing = append(report.Missing, key)
		case err != nil:
			return report, fmt.Errorf("failed to check %s: %w", key, err)
		case !obj.IsDir():
			report.Missing = append(report.Missing, key)
		}
	}
	return report, nil
}

// FixStructure provisions the root and creates the missing directories.
func FixStructure(ctx context.Context, engine *storage.Engine, logger *zap.Logger, missing []string) error {
	if err := engine.CreateRoot(ctx); err != nil {
		return fmt.Errorf("failed to create root: %w", err)
	}
	for _, key := range missing {
		if err := engine.WriteReader(ctx, key, strings.NewReader("")); err != nil {
			logger.Error("Failed to create directory", zap.String("key", key), zap.Error(err))
			return err
		}
		logger.Info("Created missing directory", zap.String("key", key))
	}
	return nil
}
