package metrics

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"objectfs/core/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "objectfs/core/storage/mem"
)

func TestObserve(t *testing.T) {
	m := New()

	m.Observe("read", 128, nil, 10*time.Millisecond)
	m.Observe("head", 0, storage.NewError("head", "k", storage.ErrNotFound, nil), time.Millisecond)

	assert.Equal(t, 128.0, testutil.ToFloat64(m.storageBytes.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOps.WithLabelValues("read", "ok", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOps.WithLabelValues("head", "error", "NotFound")))
}

func TestObserve_FromEngine(t *testing.T) {
	ctx := context.Background()
	m := New()
	e, err := storage.New(ctx, storage.Config{Backend: "mem", Endpoint: "metrics"}, storage.WithObserver(m))
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Head(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOps.WithLabelValues("head", "error", "NotFound")))
}

func TestMiddleware(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	_, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("200", "GET")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("404", "GET")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inflight))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
