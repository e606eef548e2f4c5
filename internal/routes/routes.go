package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/moneyon/moneyon_server/internal/auth"
	"github.com/moneyon/moneyon_server/internal/config"
	"github.com/moneyon/moneyon_server/internal/identity"
	"github.com/moneyon/moneyon_server/internal/middleware"
	"github.com/moneyon/moneyon_server/internal/notification"
)

const livenessMessage = "MoneyOn Server is running...."

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Users  identity.Repository
	Hasher identity.PINHasher
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Users == nil {
		return fmt.Errorf("user store is required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Hasher == nil {
		d.Hasher = identity.NewBcryptHasher()
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.CORS(d.Cfg.CORSOrigin))
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).SendString(livenessMessage)
	})
	RegisterHealthRoutes(app, d)

	notifier := notification.NewLoggerNotifier(d.Logger)
	identitySvc := identity.NewService(d.Users, d.Hasher, notifier, d.Logger)
	authHandler := auth.NewHandler(identitySvc, d.Logger)

	api := app.Group("/api")
	RegisterAuthRoutes(api, authHandler, AuthMiddleware{
		LoginRateLimit: middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit, d.Logger),
		Idempotency:    middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
	})

	return nil
}
