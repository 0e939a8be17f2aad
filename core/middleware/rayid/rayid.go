package rayid

import (
	"objectfs/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header is the response header carrying the request ID.
const Header = "X-Ray-ID"

// New returns a middleware that tags every request with a RayID. An
// incoming X-Ray-ID header is kept so that callers can correlate requests
// across services.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(logger.RayIDKey, rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
