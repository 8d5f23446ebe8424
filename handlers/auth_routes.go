package handlers

import (
	"poker-ledger/middleware"
	"poker-ledger/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, requireUser fiber.Handler) {
	// 🔓 Public
	app.Post("/auth/register", authService.Register)
	app.Post("/auth/login", authService.Login)

	// 🔐 Secured
	app.Get("/auth/me", requireUser, authService.Me)
}

// NewRequireUser builds the session middleware shared by every secured group.
func NewRequireUser(tokens *services.TokenService, gatewayToken string) fiber.Handler {
	return middleware.RequireUser(tokens, gatewayToken)
}
