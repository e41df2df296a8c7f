package middleware

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// CheckRateLimit checks if a resource has exceeded its rate limit.
// Returns true if allowed, false if limit exceeded.
// Rate limiting is disabled when APP_ENV is "test" or "development" so dev
// and test workflows are not throttled.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	switch env {
	case "test", "development":
		return true, nil
	}

	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	// INCR and set EXPIRE if new
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	if cnt > int64(limit) {
		return false, nil
	}
	return true, nil
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`
// for the named resource. It keys by authenticated userID (if set in
// c.Locals("userID")) otherwise by remote IP. Fails open when Redis is down:
// the write path should not become unavailable because the limiter store is.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.IP()
		if uid, ok := c.Locals("userID").(uint); ok {
			id = "u" + strconv.FormatUint(uint64(uid), 10)
		}

		allowed, err := CheckRateLimit(c.Context(), rdb, resource, id, limit, window)
		if err != nil {
			Logger.Warn("rate limiter unavailable, allowing request",
				"resource", resource, "error", err.Error())
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
