package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"poker-ledger/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PlayerService struct {
	DB *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{DB: db}
}

type playerInput struct {
	Name string `json:"name"`
}

// HistoryEntry is one game from a player's point of view.
type HistoryEntry struct {
	GameID  string          `json:"game_id"`
	Date    time.Time       `json:"date"`
	Buyin   decimal.Decimal `json:"buyin"`
	Cashout decimal.Decimal `json:"cashout"`
	Profit  decimal.Decimal `json:"profit"`
}

// Roster lists a user's players ordered by name.
func (s *PlayerService) Roster(userID string) ([]models.Player, error) {
	players := []models.Player{}
	err := s.DB.Where("user_id = ?", userID).Order("name ASC").Find(&players).Error
	return players, err
}

// CreatePlayer adds a player after a case-insensitive duplicate check.
func CreatePlayer(tx *gorm.DB, userID, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("player name is required")
	}
	if len(name) > 100 {
		return nil, validationError("player name is too long")
	}

	if _, err := findPlayerByName(tx, userID, name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := &models.Player{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          name,
		NetProfit:     decimal.Zero,
		TotalBuyins:   decimal.Zero,
		TotalCashouts: decimal.Zero,
	}
	if err := tx.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPlayers returns the caller's roster.
func (s *PlayerService) GetPlayers(c *fiber.Ctx) error {
	players, err := s.Roster(currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}
	return c.JSON(players)
}

// GetPlayerByID returns one player.
func (s *PlayerService) GetPlayerByID(c *fiber.Ctx) error {
	var p models.Player
	if err := s.DB.First(&p, "id = ? AND user_id = ?", c.Params("id"), currentUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(p)
}

func (s *PlayerService) CreatePlayer(c *fiber.Ctx) error {
	var in playerInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	p, err := CreatePlayer(s.DB, currentUserID(c), in.Name)
	if err != nil {
		return respondError(c, err, "failed to create player")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// UpdatePlayer renames a player.
func (s *PlayerService) UpdatePlayer(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var in playerInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player name is required"})
	}

	var p models.Player
	if err := s.DB.First(&p, "id = ? AND user_id = ?", c.Params("id"), userID).Error; err != nil {
		return respondError(c, err, "DB error")
	}

	if other, err := findPlayerByName(s.DB, userID, name); err == nil && other.ID != p.ID {
		return respondError(c, ErrDuplicatePlayer, "")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err, "DB error")
	}

	p.Name = name
	if err := s.DB.Model(&p).Update("name", name).Error; err != nil {
		return respondError(c, err, "failed to update player")
	}
	return c.JSON(p)
}

// DeletePlayer removes a player that has no history.
func (s *PlayerService) DeletePlayer(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id := c.Params("id")

	var p models.Player
	if err := s.DB.First(&p, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return respondError(c, err, "DB error")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var games, settlements int64
		if err := tx.Model(&models.GamePlayer{}).Where("player_id = ?", id).Count(&games).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Settlement{}).
			Where("from_player_id = ? OR to_player_id = ?", id, id).Count(&settlements).Error; err != nil {
			return err
		}
		if games > 0 || settlements > 0 {
			return fmt.Errorf("%w (%d games, %d settlements)", ErrPlayerInUse, games, settlements)
		}
		return tx.Delete(&p).Error
	})
	if err != nil {
		return respondError(c, err, "failed to delete player")
	}

	log.Printf("🗑️ [PLAYERS] deleted player %s (%s)", p.Name, p.ID)
	return c.JSON(fiber.Map{"message": "player deleted successfully", "id": id})
}

// GetPlayerHistory returns the player's games (newest first) and the
// settlements they took part in.
func (s *PlayerService) GetPlayerHistory(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id := c.Params("id")

	var p models.Player
	if err := s.DB.First(&p, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return respondError(c, err, "DB error")
	}

	var games []models.Game
	err := s.DB.
		Where("user_id = ? AND id IN (?)", userID,
			s.DB.Model(&models.GamePlayer{}).Select("game_id").Where("player_id = ?", id)).
		Preload("Players", "player_id = ?", id).
		Order("date DESC").
		Find(&games).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch history"})
	}

	history := make([]HistoryEntry, 0, len(games))
	for _, g := range games {
		for _, gp := range g.Players {
			history = append(history, HistoryEntry{
				GameID:  g.ID,
				Date:    g.Date,
				Buyin:   gp.Buyin,
				Cashout: gp.Cashout,
				Profit:  gp.Profit,
			})
		}
	}

	settlements := []models.Settlement{}
	if err := s.DB.Where("from_player_id = ? OR to_player_id = ?", id, id).
		Order("date DESC").Find(&settlements).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch settlements"})
	}

	return c.JSON(fiber.Map{
		"player":      p,
		"games":       history,
		"settlements": settlements,
	})
}
