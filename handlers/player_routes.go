package handlers

import (
	"poker-ledger/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayerRoutes(app *fiber.App, playerService *services.PlayerService, requireUser fiber.Handler) {
	players := app.Group("/players", requireUser)

	players.Get("/", playerService.GetPlayers)
	players.Post("/", playerService.CreatePlayer)
	players.Get("/:id", playerService.GetPlayerByID)
	players.Get("/:id/history", playerService.GetPlayerHistory)
	players.Put("/:id", playerService.UpdatePlayer)
	players.Patch("/:id", playerService.UpdatePlayer)
	players.Delete("/:id", playerService.DeletePlayer)
}
