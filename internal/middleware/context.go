package middleware

import (
	"context"

	"campusboard/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ContextKey is the type for values propagated through request contexts.
type ContextKey string

// UserIDKey carries the authenticated user ID in the request context.
const UserIDKey ContextKey = "user_id"

// ContextMiddleware propagates the Fiber request ID into the user context as
// a correlation ID so downstream slog calls can attach it.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = observability.WithCorrelationID(ctx, rid)
		}

		if uid, ok := c.Locals("userID").(uint); ok {
			ctx = context.WithValue(ctx, UserIDKey, uid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}
