package handlers

import (
	"poker-ledger/services"

	"github.com/gofiber/fiber/v2"
)

func SetupStatsRoutes(app *fiber.App, statsService *services.StatsService, requireUser fiber.Handler) {
	stats := app.Group("/stats", requireUser)

	stats.Get("/leaderboard", statsService.GetLeaderboard)
	stats.Get("/summary", statsService.GetSummary)
}
