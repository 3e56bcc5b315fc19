package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"

	"schoolku_web/internals/helpers/logger"
)

const LocRequestID = "request_id"

// RequestIDMiddleware memakai X-Request-ID dari client bila ada, selain itu
// membuat baru. ID ikut ke UserContext supaya log service bisa dikorelasikan.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		if rid == "" || len(rid) > 64 {
			rid = utils.UUID()
		}
		c.Set(fiber.HeaderXRequestID, rid)
		c.Locals(LocRequestID, rid)
		c.SetUserContext(logger.WithRequestID(c.UserContext(), rid))
		return c.Next()
	}
}
