package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyon/moneyon_server/internal/logging"
)

func setupIdempotencyApp(t *testing.T) (*fiber.App, *atomic.Int32) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	calls := &atomic.Int32{}
	app := fiber.New()
	app.Use(RequestID())
	app.Post("/register", Idempotency(cache, time.Minute, logging.Discard()), func(c *fiber.Ctx) error {
		if calls.Add(1) > 1 {
			return fiber.NewError(fiber.StatusBadRequest, "duplicate")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "registered"})
	})
	return app, calls
}

func sendRegister(t *testing.T, app *fiber.App, headers map[string]string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/register", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(payload)
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	app, calls := setupIdempotencyApp(t)

	first, _ := sendRegister(t, app, nil)
	second, _ := sendRegister(t, app, nil)

	assert.Equal(t, fiber.StatusCreated, first.StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, second.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls := setupIdempotencyApp(t)
	headers := map[string]string{idempotencyKeyHeader: "abc123"}

	first, payload := sendRegister(t, app, headers)
	require.Equal(t, fiber.StatusCreated, first.StatusCode)

	second, cachedPayload := sendRegister(t, app, headers)
	assert.Equal(t, fiber.StatusCreated, second.StatusCode)
	assert.Equal(t, payload, cachedPayload)
	assert.Equal(t, int32(1), calls.Load())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(cachedPayload), &decoded))
}

func TestIdempotencyReplayKeepsRetryRequestID(t *testing.T) {
	app, _ := setupIdempotencyApp(t)

	first, _ := sendRegister(t, app, map[string]string{idempotencyKeyHeader: "abc123", requestIDHeader: "req-first"})
	require.Equal(t, fiber.StatusCreated, first.StatusCode)
	assert.Equal(t, "req-first", first.Header.Get(requestIDHeader))

	retry, _ := sendRegister(t, app, map[string]string{idempotencyKeyHeader: "abc123", requestIDHeader: "req-retry"})
	assert.Equal(t, fiber.StatusCreated, retry.StatusCode)
	assert.Equal(t, "req-retry", retry.Header.Get(requestIDHeader))
}
