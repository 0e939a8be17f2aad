package integrity

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"objectfs/core/database"
	"objectfs/core/storage"
	"objectfs/core/storage/mem"
	"objectfs/core/storage/sqlblob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMemEngine(t *testing.T) *storage.Engine {
	e := storage.NewWithDriver(mem.New(t.Name()), storage.Config{Backend: "mem"})
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestService_ReadOnlySkipsMutations(t *testing.T) {
	svc := NewService(newMemEngine(t), zap.NewNop(), true)

	_, err := svc.CheckRoundTrip(context.Background())
	assert.ErrorIs(t, err, ErrSkipped)
	assert.ErrorIs(t, svc.FixStructure(context.Background(), []string{"a/"}), ErrSkipped)
}

func TestService_SchemaSkippedForNonSQL(t *testing.T) {
	svc := NewService(newMemEngine(t), zap.NewNop(), false)
	_, err := svc.CheckSchema()
	assert.ErrorIs(t, err, ErrSkipped)
}

func TestService_SchemaOnSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(database.Config{Driver: "sqlite3", Name: filepath.Join(t.TempDir(), "blobs.db")})
	require.NoError(t, err)
	store := sqlblob.New(db, "sqlite3://blobs.db/")
	engine := storage.NewWithDriver(store, storage.Config{Backend: "sqlite3"})
	defer engine.Close()
	require.NoError(t, engine.CreateRoot(ctx))

	svc := NewService(engine, zap.NewNop(), false)
	report, err := svc.CheckSchema()
	require.NoError(t, err)
	assert.True(t, report.Matched)

	rt, err := svc.CheckRoundTrip(ctx)
	require.NoError(t, err)
	assert.True(t, rt.Matched, rt.Problems)
}

func TestService_Pagination(t *testing.T) {
	ctx := context.Background()
	engine := newMemEngine(t)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, engine.WriteReader(ctx, k, strings.NewReader(k)))
	}

	svc := NewService(engine, zap.NewNop(), false)
	report, err := svc.CheckPagination(ctx, "", 2)
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Equal(t, 3, report.Pages)
	assert.Equal(t, 5, report.Paged)
}
