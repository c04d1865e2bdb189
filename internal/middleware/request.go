package middleware

import (
	"purse/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger tags each request with an id, echoed in the response, and
// attaches a logger carrying it to the request context.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)

		reqLog := log.With(zap.String("request_id", id))
		c.SetUserContext(logger.WithContext(c.UserContext(), reqLog))
		return c.Next()
	}
}
