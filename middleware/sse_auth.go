// middleware/sse_auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware reads the session token from the `token` query param,
// since EventSource cannot send headers.
//
// Usage:
//
//	app.Get("/games/stream", middleware.SSEAuthMiddleware(tokens), gameService.StreamGamesSSE)
func SSEAuthMiddleware(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			token = bearerToken(c.Get("Authorization"))
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing token in query",
			})
		}

		userID, err := tokens.Validate(token)
		if err != nil {
			log.Printf("[SSEAuth] ❌ validation failed (prefix: %.10s...): %v", token, err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals("user_id", userID)
		log.Printf("[SSEAuth] ✅ authenticated user %s", userID)
		return c.Next()
	}
}
