package handlers

import (
	"poker-ledger/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSettlementRoutes(app *fiber.App, settlementService *services.SettlementService, requireUser fiber.Handler) {
	settlements := app.Group("/settlements", requireUser)

	settlements.Get("/", settlementService.GetSettlements)
	settlements.Get("/suggestions", settlementService.GetSuggestions)
	settlements.Post("/", settlementService.CreateSettlement)
	settlements.Put("/:id", settlementService.UpdateSettlement)
	settlements.Delete("/:id", settlementService.DeleteSettlement)
}
