// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// gatewayUser accepts requests forwarded by a trusted gateway: the shared
// token in X-Gateway-Token plus the resolved user in X-User-ID. It is
// disabled when expected is empty.
func gatewayUser(c *fiber.Ctx, expected string) (string, bool) {
	if expected == "" {
		return "", false
	}
	token := strings.TrimSpace(c.Get("X-Gateway-Token"))
	if token == "" {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		log.Printf("❌ [GATEWAY_AUTH] invalid token for %s (got prefix: %.4s...)", c.Path(), token)
		return "", false
	}

	userID := strings.TrimSpace(c.Get("X-User-ID"))
	if userID == "" {
		log.Printf("❌ [GATEWAY_AUTH] X-User-ID missing on %s", c.Path())
		return "", false
	}
	return userID, true
}
