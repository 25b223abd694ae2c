package middleware

import (
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstThenBlock(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))

	// other clients have their own bucket
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Allow("a")
	rl.Allow("b")
	require.Equal(t, 2, rl.size())

	rl.Cleanup(time.Hour)
	assert.Equal(t, 2, rl.size())

	rl.Cleanup(-time.Second)
	assert.Equal(t, 0, rl.size())
}

func TestRateLimiter_SweepsIdleClientsOnAllow(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	rl.Allow("idle")
	rl.Allow("recent")

	rl.mu.Lock()
	rl.visitors["idle"].lastSeen = time.Now().Add(-2 * idleTimeout)
	rl.lastSweep = time.Now().Add(-2 * cleanupInterval)
	rl.mu.Unlock()

	assert.True(t, rl.Allow("new"))
	assert.Equal(t, 2, rl.size())
	rl.mu.Lock()
	_, idleKept := rl.visitors["idle"]
	rl.mu.Unlock()
	assert.False(t, idleKept)
}

func TestRateLimitMiddleware_StartsNoGoroutines(t *testing.T) {
	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		_ = FiberRateLimitMiddleware()
		_ = FiberAuthRateLimitMiddleware()
	}
	assert.Less(t, runtime.NumGoroutine(), before+10)
}

func TestNewRateLimiter_Guards(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	assert.Equal(t, 1, rl.burst)
	assert.True(t, rl.Allow("x"))
}

func TestFiberAuthRateLimitMiddleware(t *testing.T) {
	t.Setenv("AUTH_RATE_LIMIT_MAX", "2")
	t.Setenv("AUTH_RATE_LIMIT_WINDOW_MS", "600000")

	app := fiber.New()
	app.Post("/login", FiberAuthRateLimitMiddleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestFiberRateLimitMiddleware_DisabledAndHealth(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "1")

	app := fiber.New()
	app.Use(FiberRateLimitMiddleware())
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(200) })
	app.Get("/api/book", func(c *fiber.Ctx) error { return c.SendStatus(200) })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/book", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	resp, err = app.Test(httptest.NewRequest("GET", "/api/book", nil))
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	resp, err = app.Test(httptest.NewRequest("GET", "/api/book", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
