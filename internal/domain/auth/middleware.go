package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/event-mate/backend/internal/utils"
)

const (
	// IdentityKey is the key used to store the identity in Fiber context
	IdentityKey = "identity"
)

// LoginGuard verifies the bearer access token and attaches the caller's
// identity to the request context. With required set to false a missing or
// malformed header lets the request through without an identity, but a
// token that is present and invalid is still rejected. Missing-header and
// bad-token rejections share the 401 status so the responses cannot be
// told apart by status code.
func LoginGuard(codec *TokenCodec, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			if required {
				return utils.ErrorResponse(c, "could not find the authorization header", fiber.StatusUnauthorized)
			}
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			if required {
				return utils.ErrorResponse(c, "could not find the authorization header", fiber.StatusUnauthorized)
			}
			return c.Next()
		}

		claims, err := codec.Verify(parts[1])
		if err != nil {
			if errors.Is(err, ErrInvalidToken) {
				return utils.ErrorResponse(c, "invalid or expired token", fiber.StatusUnauthorized)
			}
			return utils.ErrorResponse(c, "internal server error", fiber.StatusInternalServerError)
		}

		c.Locals(IdentityKey, &Identity{UserID: claims.UserID, Role: claims.Role})

		return c.Next()
	}
}

// GetIdentity extracts the identity from Fiber context. It returns nil when
// the request passed an optional guard without credentials.
func GetIdentity(c *fiber.Ctx) *Identity {
	identity, ok := c.Locals(IdentityKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}
