package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moneyon/moneyon_server/internal/auth"
)

// AuthMiddleware holds optional per-route handlers for the auth group.
type AuthMiddleware struct {
	LoginRateLimit fiber.Handler
	Idempotency    fiber.Handler
}

// RegisterAuthRoutes wires authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, mw AuthMiddleware) {
	group := r.Group("/auth")
	group.Post("/register", chain(h.Register, mw.Idempotency)...)
	group.Post("/login", chain(h.Login, mw.LoginRateLimit)...)
	group.Post("/logout", h.Logout)
}

func chain(last fiber.Handler, before ...fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(before)+1)
	for _, h := range before {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	return append(handlers, last)
}
