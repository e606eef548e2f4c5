package auth

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/moneyon/moneyon_server/internal/apperr"
	"github.com/moneyon/moneyon_server/internal/identity"
)

const (
	registeredMessage = "User registered successfully. Awaiting admin approval."
	loggedOutMessage  = "Logged out successfully"
)

// Handler exposes the register, login and logout endpoints.
type Handler struct {
	ids    *identity.Service
	logger *slog.Logger
}

// NewHandler builds an auth HTTP handler.
func NewHandler(ids *identity.Service, logger *slog.Logger) *Handler {
	return &Handler{ids: ids, logger: logger}
}

type registerRequest struct {
	Name         string `json:"name"`
	PIN          string `json:"pin"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PhotoURL     string `json:"photoURL"`
}

type loginRequest struct {
	EmailOrMobile string `json:"emailOrMobile"`
	PIN           string `json:"pin"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates a pending account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidRequest(err)
	}
	user, err := h.ids.Register(c.UserContext(), identity.Registration{
		Name:         req.Name,
		PIN:          req.PIN,
		MobileNumber: req.MobileNumber,
		Email:        req.Email,
		Role:         req.Role,
		PhotoURL:     req.PhotoURL,
	})
	if err != nil {
		return err
	}
	if h.logger != nil {
		h.logger.Info("auth.register completed",
			slog.String("user_id", user.ID),
			slog.String("status", user.Status),
			slog.Int("http_status", http.StatusCreated),
		)
	}
	return c.Status(http.StatusCreated).JSON(messageResponse{Message: registeredMessage})
}

// Login verifies the PIN and returns the user's public profile.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidRequest(err)
	}
	profile, err := h.ids.Login(c.UserContext(), identity.Credentials{EmailOrMobile: req.EmailOrMobile, PIN: req.PIN})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(profile)
}

// Logout always succeeds; no session is created at login.
func (h *Handler) Logout(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(messageResponse{Message: loggedOutMessage})
}
