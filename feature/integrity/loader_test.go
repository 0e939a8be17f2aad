package integrity

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFeature_LoadMountsChecks(t *testing.T) {
	feature := NewFeature(newMemEngine(t), zap.NewNop(), true)

	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())
	require.NotNil(t, feature.Service())

	app := fiber.New()
	require.NoError(t, feature.Load(app))

	for _, path := range []string{"/integrity/structure", "/integrity/pagination", "/integrity/schema"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.NotEqual(t, fiber.StatusNotFound, resp.StatusCode, path)
	}
}
