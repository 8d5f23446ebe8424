package services

import (
	"errors"
	"log"

	"poker-ledger/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettlementService struct {
	DB *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{DB: db}
}

type settlementInput struct {
	FromPlayerID string          `json:"from_player_id"`
	ToPlayerID   string          `json:"to_player_id"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date"`
	Notes        string          `json:"notes"`
}

func (in settlementInput) validate() error {
	if in.FromPlayerID == "" || in.ToPlayerID == "" {
		return validationError("from_player_id and to_player_id are required")
	}
	if in.FromPlayerID == in.ToPlayerID {
		return validationError("a player cannot settle with themselves")
	}
	if !in.Amount.IsPositive() {
		return validationError("amount must be greater than zero")
	}
	return nil
}

// apply checks ownership and copies the input onto st.
func (in settlementInput) apply(tx *gorm.DB, userID string, st *models.Settlement) error {
	if err := in.validate(); err != nil {
		return err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return err
	}
	if _, err := loadOwnedPlayers(tx, userID, []string{in.FromPlayerID, in.ToPlayerID}); err != nil {
		return err
	}

	st.FromPlayerID = in.FromPlayerID
	st.ToPlayerID = in.ToPlayerID
	st.Amount = in.Amount.Round(2)
	st.Date = date
	st.Notes = in.Notes
	return nil
}

func loadSettlement(db *gorm.DB, userID, id string) (*models.Settlement, error) {
	var st models.Settlement
	err := db.Preload("FromPlayer").Preload("ToPlayer").
		First(&st, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetSettlements lists the caller's settlements, newest first.
func (s *SettlementService) GetSettlements(c *fiber.Ctx) error {
	settlements := []models.Settlement{}
	if err := s.DB.Preload("FromPlayer").Preload("ToPlayer").
		Where("user_id = ?", currentUserID(c)).
		Order("date DESC, created_at DESC").
		Find(&settlements).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch settlements"})
	}
	return c.JSON(settlements)
}

func (s *SettlementService) CreateSettlement(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var in settlementInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	st := &models.Settlement{ID: uuid.NewString(), UserID: userID}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := in.apply(tx, userID, st); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(st).Error; err != nil {
			return err
		}
		return RecalculatePlayerStats(tx, st.FromPlayerID, st.ToPlayerID)
	})
	if err != nil {
		return respondError(c, err, "failed to create settlement")
	}

	log.Printf("💸 [SETTLEMENTS] %s paid %s to %s", st.FromPlayerID, st.Amount.StringFixed(2), st.ToPlayerID)

	created, err := loadSettlement(s.DB, userID, st.ID)
	if err != nil {
		return c.Status(fiber.StatusCreated).JSON(st)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (s *SettlementService) UpdateSettlement(c *fiber.Ctx) error {
	userID := currentUserID(c)

	st, err := loadSettlement(s.DB, userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "settlement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var in settlementInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	affected := []string{st.FromPlayerID, st.ToPlayerID}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := in.apply(tx, userID, st); err != nil {
			return err
		}
		st.FromPlayer, st.ToPlayer = nil, nil
		if err := tx.Omit(clause.Associations).Save(st).Error; err != nil {
			return err
		}
		return RecalculatePlayerStats(tx, append(affected, st.FromPlayerID, st.ToPlayerID)...)
	})
	if err != nil {
		return respondError(c, err, "failed to update settlement")
	}

	updated, err := loadSettlement(s.DB, userID, st.ID)
	if err != nil {
		return c.JSON(st)
	}
	return c.JSON(updated)
}

func (s *SettlementService) DeleteSettlement(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id := c.Params("id")

	st, err := loadSettlement(s.DB, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "settlement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Settlement{}, "id = ?", id).Error; err != nil {
			return err
		}
		return RecalculatePlayerStats(tx, st.FromPlayerID, st.ToPlayerID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete settlement"})
	}

	return c.JSON(fiber.Map{"message": "settlement deleted successfully", "id": id})
}

// GetSuggestions proposes the transfers that would clear every balance.
func (s *SettlementService) GetSuggestions(c *fiber.Ctx) error {
	var players []models.Player
	if err := s.DB.Where("user_id = ?", currentUserID(c)).Order("name ASC").Find(&players).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}

	balances := make([]Balance, 0, len(players))
	for _, p := range players {
		balances = append(balances, Balance{PlayerID: p.ID, Name: p.Name, Amount: p.NetProfit})
	}

	return c.JSON(fiber.Map{"transfers": SuggestSettlements(balances)})
}
