package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisForTest(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCheckRateLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("Disabled outside production", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		allowed, err := CheckRateLimit(ctx, nil, "signup", "ip1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Counts against the limit", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		rdb := redisForTest(t)

		for i := 0; i < 3; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Separate resources have separate budgets", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		rdb := redisForTest(t)

		allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip1", 1, time.Minute)
		require.NoError(t, err)
		require.True(t, allowed)
		allowed, err = CheckRateLimit(ctx, rdb, "signup", "ip1", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		allowed, err = CheckRateLimit(ctx, rdb, "login", "ip1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Nil client errors in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := CheckRateLimit(ctx, nil, "signup", "ip1", 1, time.Minute)
		assert.Error(t, err)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := redisForTest(t)

	app := fiber.New()
	app.Post("/posts", RateLimit(rdb, 2, time.Minute, "create_post"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	app := fiber.New()
	app.Post("/posts", RateLimit(nil, 1, time.Minute, "create_post"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
