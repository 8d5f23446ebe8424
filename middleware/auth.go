// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenValidator resolves a session token to a user id.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// RequireUser authenticates the request and stores the caller in
// c.Locals("user_id"). A gateway-signed request (see gatewayUser) wins over
// a bearer session token.
func RequireUser(tokens TokenValidator, gatewayToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, ok := gatewayUser(c, gatewayToken); ok {
			c.Locals("user_id", userID)
			return c.Next()
		}

		token := bearerToken(c.Get("Authorization"))
		if token == "" {
			log.Printf("🚫 [AUTH] missing token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication token missing",
			})
		}

		userID, err := tokens.Validate(token)
		if err != nil {
			log.Printf("❌ [AUTH] invalid token for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
