package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	CtxRequestID    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware honours a caller-supplied id only when it is a valid
// UUID; anything else is replaced so log fields stay parseable.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.New().String()
		}
		c.Locals(CtxRequestID, reqID)
		c.Set(requestIDHeader, reqID)
		return c.Next()
	}
}
