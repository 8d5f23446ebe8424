package handlers

import (
	"poker-ledger/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBulkGameRoutes(app *fiber.App, bulkService *services.BulkGameService, requireUser fiber.Handler) {
	bulk := app.Group("/bulk-game", requireUser)

	bulk.Post("/parse", bulkService.ParseBulkGame)
	bulk.Post("/create", bulkService.CreateBulkGame)
	bulk.Post("/ocr", bulkService.ParseBulkImage)
}
