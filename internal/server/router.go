package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/event-mate/backend/internal/config"
	"github.com/event-mate/backend/internal/domain/auth"
	"github.com/event-mate/backend/internal/domain/user"
	"github.com/event-mate/backend/internal/microservice"
)

// SetupAuthRoutes sets up the routes of the auth service
func SetupAuthRoutes(app *fiber.App, h *auth.Handler, services *config.ServicesConfig) {
	api := app.Group("/v1")

	registerHealth(api)

	api.Post("/login", h.Login)
	api.Post("/refresh", h.Refresh)
	api.Post("/logout", h.Logout)

	// only the user service may create credentials
	api.Post("/registration", microservice.ApikeyGuard(services.Secret, true), h.Register)
}

// SetupUserRoutes sets up the routes of the user service
func SetupUserRoutes(app *fiber.App, h *user.Handler, codec *auth.TokenCodec, services *config.ServicesConfig) {
	api := app.Group("/v1")

	registerHealth(api)

	api.Get("/identity/:email", microservice.ApikeyGuard(services.Secret, true), h.Identity)
	api.Get("/availability", h.Availability)
	api.Post("/users", h.Register)
	api.Get("/users/:id", auth.LoginGuard(codec, true), h.GetUser)
	api.Patch("/users/me", auth.LoginGuard(codec, true), h.UpdateProfile)
}

func registerHealth(api fiber.Router) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	})
}
