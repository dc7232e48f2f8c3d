package user

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/event-mate/backend/internal/domain/auth"
	"github.com/event-mate/backend/internal/utils"
)

// Handler exposes the user service over HTTP
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler
func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// GetUser handles GET /v1/users/:id
func (h *Handler) GetUser(c *fiber.Ctx) error {
	u, err := h.service.GetUser(c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusNotFound)
		}
		return utils.ErrorResponse(c, "internal server error", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c, u, "User found")
}

// Identity handles GET /v1/identity/:email, consumed by the auth service
// during login. Guarded by the microservice Apikey.
func (h *Handler) Identity(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return utils.ErrorResponse(c, "invalid email parameter", fiber.StatusBadRequest)
	}

	id, err := h.service.IdentityByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusNotFound)
		}
		return utils.ErrorResponse(c, "internal server error", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c, fiber.Map{"id": id}, "Identity found")
}

// Availability handles GET /v1/availability?email=&username=
func (h *Handler) Availability(c *fiber.Ctx) error {
	email := c.Query("email")
	username := c.Query("username")

	if email == "" && username == "" {
		return utils.ErrorResponse(c, "provide an email or username to check", fiber.StatusBadRequest)
	}

	av, err := h.service.CheckAvailability(email, username)
	if err != nil {
		return utils.ErrorResponse(c, "internal server error", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c, av, "Availability checked")
}

// Register handles POST /v1/users
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "unable to parse provided data", fiber.StatusUnprocessableEntity)
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return utils.ErrorResponse(c, "username, email and password are required", fiber.StatusBadRequest)
	}

	u, err := h.service.Register(req)
	if err != nil {
		if errors.Is(err, ErrCredentialsInUse) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest)
		}
		return utils.ErrorResponse(c, "internal server error", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c, u, "User registered", fiber.StatusCreated)
}

// UpdateProfile handles PATCH /v1/users/me for the authenticated user
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	identity := auth.GetIdentity(c)
	if identity == nil {
		return utils.ErrorResponse(c, "user is not authorized", fiber.StatusUnauthorized)
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "unable to parse provided data", fiber.StatusUnprocessableEntity)
	}

	u, err := h.service.UpdateProfile(identity.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return utils.ErrorResponse(c, err.Error(), fiber.StatusNotFound)
		case errors.Is(err, ErrCredentialsInUse):
			return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest)
		default:
			return utils.ErrorResponse(c, "internal server error", fiber.StatusInternalServerError)
		}
	}

	return utils.SuccessResponse(c, u, "Profile updated")
}
