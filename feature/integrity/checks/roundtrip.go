package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"objectfs/core/storage"

	"github.com/google/uuid"
)

// ProbePrefix holds the keys written by CheckRoundTrip.
const ProbePrefix = ".objectfs-probe/"

// RoundTripReport is the outcome of a write, read, remove cycle.
type RoundTripReport struct {
	Key      string   `json:"key"`
	Written  int64    `json:"written"`
	Read     int64    `json:"read"`
	Ranged   bool     `json:"ranged"`
	Removed  bool     `json:"removed"`
	Matched  bool     `json:"matched"`
	Problems []string `json:"problems"`
}

// CheckRoundTrip writes a probe object, reads it back whole and by range,
// removes it and confirms it is gone. The probe is removed even when a
// step fails.
func CheckRoundTrip(ctx context.Context, engine *storage.Engine) (*RoundTripReport, error) {
	key := ProbePrefix + uuid.NewString()
	payload := []byte("objectfs round trip " + key)
	report := &RoundTripReport{Key: key, Problems: []string{}}

	w, err := engine.Write(ctx, key)
	if err != nil {
		return report, fmt.Errorf("failed to open probe: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		_ = w.Abort()
		return report, fmt.Errorf("failed to write probe: %w", err)
	}
	if err := w.Close(); err != nil {
		return report, fmt.Errorf("failed to commit probe: %w", err)
	}
	report.Written = int64(len(payload))
	defer func() {
		if !report.Removed {
			_ = engine.Remove(context.WithoutCancel(ctx), key)
		}
	}()

	obj, err := engine.Head(ctx, key)
	if err != nil {
		return report, fmt.Errorf("failed to stat probe: %w", err)
	}
	if obj.Size != report.Written {
		report.Problems = append(report.Problems, fmt.Sprintf("head size %d, wrote %d", obj.Size, report.Written))
	}

	data, err := readRange(ctx, engine, key, 0, -1)
	if err != nil {
		return report, err
	}
	report.Read = int64(len(data))
	if !bytes.Equal(data, payload) {
		report.Problems = append(report.Problems, "content differs from what was written")
	}

	part, err := readRange(ctx, engine, key, 8, 5)
	if err != nil {
		return report, err
	}
	report.Ranged = bytes.Equal(part, payload[8:13])
	if !report.Ranged {
		report.Problems = append(report.Problems, fmt.Sprintf("range [8,13) returned %q", part))
	}

	if err := engine.Remove(ctx, key); err != nil {
		return report, fmt.Errorf("failed to remove probe: %w", err)
	}
	report.Removed = true
	if _, err := engine.Head(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		report.Problems = append(report.Problems, "probe still visible after remove")
	}

	report.Matched = len(report.Problems) == 0
	return report, nil
}

func readRange(ctx context.Context, engine *storage.Engine, key string, offset, limit int64) ([]byte, error) {
	r, err := engine.Read(ctx, key, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to open probe for reading: %w", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read probe: %w", err)
	}
	return data, nil
}
