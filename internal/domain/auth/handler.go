package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/event-mate/backend/internal/utils"
)

const refreshCookieName = "refresh_token"

// LoginRequest is the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries the refresh token when it is not sent as a cookie
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RegistrationRequest is the service-to-service credential creation body
type RegistrationRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// Handler exposes the auth service over HTTP
type Handler struct {
	authService *Service
	refreshTTL  time.Duration
}

// NewHandler creates a new auth handler
func NewHandler(s *Service, refreshTTL time.Duration) *Handler {
	return &Handler{authService: s, refreshTTL: refreshTTL}
}

// Login handles POST /v1/login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "unable to parse provided data", fiber.StatusUnprocessableEntity)
	}

	if req.Email == "" || req.Password == "" {
		return utils.ErrorResponse(c, "email and password are required", fiber.StatusBadRequest)
	}

	pair, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized)
		}
		return utils.ErrorResponse(c, "internal server error", fiber.StatusInternalServerError)
	}

	h.setRefreshCookie(c, pair.Refresh)

	return utils.SuccessResponse(c, pair, "Login successful")
}

// Refresh handles POST /v1/refresh. The refresh token is read from the body
// with the cookie as fallback.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	token := h.refreshTokenFrom(c)
	if token == "" {
		return utils.ErrorResponse(c, "the refresh token is missing", fiber.StatusUnauthorized)
	}

	pair, err := h.authService.Refresh(token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrUnauthenticated) {
			return utils.ErrorResponse(c, "the authentication session has expired, please log in again", fiber.StatusUnauthorized)
		}
		return utils.ErrorResponse(c, "internal server error", fiber.StatusInternalServerError)
	}

	h.setRefreshCookie(c, pair.Refresh)

	return utils.SuccessResponse(c, pair, "Token refreshed")
}

// Logout handles POST /v1/logout. Logging out with a stale or garbage token
// still answers 200, there is nothing actionable for the client.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token := h.refreshTokenFrom(c)

	if token != "" {
		if err := h.authService.Logout(token); err != nil {
			return utils.ErrorResponse(c, "internal server error", fiber.StatusInternalServerError)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		HTTPOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: "None",
		Expires:  time.Now().Add(-time.Hour),
	})

	return utils.SuccessResponse(c, nil, "Logged out")
}

// Register handles POST /v1/registration, called by the user service after
// it created the profile. Guarded by the microservice Apikey.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "unable to parse provided data", fiber.StatusUnprocessableEntity)
	}

	if req.ID == "" || req.Password == "" {
		return utils.ErrorResponse(c, "id and password are required", fiber.StatusBadRequest)
	}

	if err := h.authService.Register(req.ID, req.Password); err != nil {
		if errors.Is(err, ErrProfileExists) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest)
		}
		return utils.ErrorResponse(c, "internal server error", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c, fiber.Map{"id": req.ID}, "Credentials registered", fiber.StatusCreated)
}

func (h *Handler) refreshTokenFrom(c *fiber.Ctx) string {
	var req RefreshRequest
	if err := c.BodyParser(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	return c.Cookies(refreshCookieName)
}

func (h *Handler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: "None",
		Expires:  time.Now().Add(h.refreshTTL),
	})
}
