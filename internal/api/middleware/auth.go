package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

// HeaderAPIKey is accepted as an alternative to a bearer token
const HeaderAPIKey = "X-API-Key"

// Auth checks the caller's key against the configured API_KEY, which may be
// plain or a sha256: digest. An empty configured key leaves the API open.
func Auth(configured string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if configured == "" {
			return c.Next()
		}

		key := presentedKey(c)
		if key == "" || !domain.APIKeyMatches(key, configured) {
			return domain.ErrUnauthorized
		}

		return c.Next()
	}
}

// presentedKey reads "Authorization: Bearer <key>", falling back to X-API-Key
func presentedKey(c *fiber.Ctx) string {
	if scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(c.Get(HeaderAPIKey))
}
