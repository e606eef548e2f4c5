package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
)

const loginRateLimitPrefix = "rl:login:"

// LoginRateLimit limits login attempts per identifier (or IP when absent).
// Counters live in Redis when cache is set and in process memory otherwise.
// Redis errors fail open.
func LoginRateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	if cache == nil {
		return limiter.New(limiter.Config{
			Max:          maxPerMin,
			Expiration:   time.Minute,
			KeyGenerator: loginKey,
			LimitReached: func(c *fiber.Ctx) error {
				return tooManyAttempts()
			},
		})
	}
	return func(c *fiber.Ctx) error {
		key := loginRateLimitPrefix + loginKey(c)
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			if logger != nil {
				logger.Warn("login rate limit unavailable", slog.Any("error", err))
			}
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return tooManyAttempts()
		}
		return c.Next()
	}
}

func loginKey(c *fiber.Ctx) string {
	var req struct {
		EmailOrMobile string `json:"emailOrMobile"`
	}
	_ = c.BodyParser(&req)
	if id := strings.ToLower(strings.TrimSpace(req.EmailOrMobile)); id != "" {
		return id
	}
	return c.IP()
}

func tooManyAttempts() error {
	return fiber.NewError(http.StatusTooManyRequests, "Too many login attempts, try again later")
}
