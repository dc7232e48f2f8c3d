package microservice

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/event-mate/backend/internal/config"
	"github.com/event-mate/backend/internal/utils"
)

var (
	// ErrMissingServiceURL is returned when no base URL is configured for
	// the requested service
	ErrMissingServiceURL = errors.New("missing URL configuration for a microservice")
	// ErrMissingSecret is returned when the shared service-to-service
	// secret is not configured
	ErrMissingSecret = errors.New("the microservice secret must be set before communicating between microservices")
)

// URL builds the full URL of a path on another service of the platform
func URL(cfg *config.ServicesConfig, service, path string, params url.Values) (string, error) {
	var base string
	switch service {
	case "user":
		base = cfg.UserURL
	case "auth":
		base = cfg.AuthURL
	case "event":
		base = cfg.EventURL
	}

	if base == "" {
		return "", fmt.Errorf("%w: cannot resolve %q", ErrMissingServiceURL, service)
	}

	full := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	if len(params) == 0 {
		return full, nil
	}

	return full + "?" + params.Encode(), nil
}

// ApikeyGuard checks that the request carries the shared microservice
// secret in an "Authorization: Apikey <secret>" header. With required set
// to false a missing or differently-shaped header lets the request through
// unauthenticated, but a present-and-wrong secret is still rejected.
func ApikeyGuard(secret string, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			if required {
				return utils.ErrorResponse(c, "could not find the authorization header", fiber.StatusUnauthorized)
			}
			return c.Next()
		}

		presented := extractSecret(header)
		if presented == "" {
			if required {
				return utils.ErrorResponse(c, "could not find the authorization header", fiber.StatusUnauthorized)
			}
			return c.Next()
		}

		if secret == "" || presented != secret {
			return utils.ErrorResponse(c, "invalid authorization header", fiber.StatusUnauthorized)
		}

		c.Locals(microserviceRequestKey, true)
		return c.Next()
	}
}

const microserviceRequestKey = "microservice_request"

// IsMicroserviceRequest reports whether the request passed the Apikey guard
func IsMicroserviceRequest(c *fiber.Ctx) bool {
	v, ok := c.Locals(microserviceRequestKey).(bool)
	return ok && v
}

func extractSecret(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Apikey" {
		return ""
	}
	return parts[1]
}
