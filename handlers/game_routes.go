// handlers/game_routes.go
package handlers

import (
	"poker-ledger/middleware"
	"poker-ledger/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, gameService *services.GameService, tokens *services.TokenService, requireUser fiber.Handler) {
	// 📡 EventSource cannot send headers, so the stream authenticates from ?token=
	app.Get("/games/stream", middleware.SSEAuthMiddleware(tokens), gameService.StreamGamesSSE)

	games := app.Group("/games", requireUser)

	games.Get("/", gameService.GetAllGames)
	games.Post("/", gameService.CreateGame)
	games.Get("/:id", gameService.GetGameByID)
	games.Get("/:id/export", gameService.ExportGame)
	games.Put("/:id", gameService.UpdateGame)
	games.Patch("/:id", gameService.UpdateGame)
	games.Delete("/:id", gameService.DeleteGame)
}
