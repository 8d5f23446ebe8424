package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"time"

	"poker-ledger/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GameService struct {
	DB *gorm.DB
	// StreamInterval is how often StreamGamesSSE polls for new games.
	StreamInterval time.Duration
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{DB: db, StreamInterval: 2 * time.Second}
}

type gamePlayerInput struct {
	PlayerID string          `json:"player_id"`
	Buyin    decimal.Decimal `json:"buyin"`
	Cashout  decimal.Decimal `json:"cashout"`
}

type gameInput struct {
	Date    string            `json:"date"`
	Notes   string            `json:"notes"`
	Players []gamePlayerInput `json:"players"`
}

// GameDraft is a validated game ready to persist.
type GameDraft struct {
	UserID         string
	Date           string
	Notes          string
	SourceImageURL string
	Rows           []models.GamePlayer
}

func (in gameInput) draft(userID string) (GameDraft, error) {
	d := GameDraft{UserID: userID, Date: in.Date, Notes: in.Notes}
	if len(in.Players) == 0 {
		return d, validationError("a game needs at least one player")
	}

	seen := make(map[string]bool, len(in.Players))
	for i, p := range in.Players {
		if p.PlayerID == "" {
			return d, validationError("player %d is missing player_id", i+1)
		}
		if seen[p.PlayerID] {
			return d, validationError("player %s appears more than once", p.PlayerID)
		}
		seen[p.PlayerID] = true
		if p.Buyin.IsNegative() || p.Cashout.IsNegative() {
			return d, validationError("buy-in and cash-out must not be negative")
		}
		d.Rows = append(d.Rows, models.GamePlayer{PlayerID: p.PlayerID, Buyin: p.Buyin, Cashout: p.Cashout})
	}
	return d, nil
}

func rowPlayerIDs(rows []models.GamePlayer) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.PlayerID)
	}
	return ids
}

// SaveGame inserts a new game, or replaces the rows of existing when it is
// non-nil, and refreshes every affected player's totals. It must run in a
// transaction.
func SaveGame(tx *gorm.DB, d GameDraft, existing *models.Game) (*models.Game, error) {
	date, err := parseDate(d.Date)
	if err != nil {
		return nil, err
	}
	if _, err := loadOwnedPlayers(tx, d.UserID, rowPlayerIDs(d.Rows)); err != nil {
		return nil, err
	}

	game := existing
	affected := rowPlayerIDs(d.Rows)
	if game == nil {
		game = &models.Game{ID: uuid.NewString(), UserID: d.UserID, SourceImageURL: d.SourceImageURL}
	} else {
		affected = append(affected, rowPlayerIDs(game.Players)...)
		if err := tx.Where("game_id = ?", game.ID).Delete(&models.GamePlayer{}).Error; err != nil {
			return nil, err
		}
	}

	game.Date = date
	game.Notes = d.Notes
	game.Players = make([]models.GamePlayer, len(d.Rows))
	for i, r := range d.Rows {
		r.ID = uuid.NewString()
		r.GameID = game.ID
		// columns hold cents; totals must add up from what is stored
		r.Buyin = r.Buyin.Round(2)
		r.Cashout = r.Cashout.Round(2)
		r.Player = nil
		game.Players[i] = r
	}
	game.Recalculate()

	save := tx.Omit(clause.Associations).Save
	if existing == nil {
		save = tx.Omit(clause.Associations).Create
	}
	if err := save(game).Error; err != nil {
		return nil, err
	}
	if err := tx.Omit(clause.Associations).Create(&game.Players).Error; err != nil {
		return nil, err
	}
	if err := RecalculatePlayerStats(tx, affected...); err != nil {
		return nil, fmt.Errorf("failed to update player stats: %w", err)
	}

	return loadGame(tx, d.UserID, game.ID)
}

func loadGame(db *gorm.DB, userID, id string) (*models.Game, error) {
	var game models.Game
	err := db.Preload("Players.Player").First(&game, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// GetAllGames returns the caller's games, newest first.
func (s *GameService) GetAllGames(c *fiber.Ctx) error {
	games := []models.Game{}
	if err := s.DB.Preload("Players.Player").
		Where("user_id = ?", currentUserID(c)).
		Order("date DESC, created_at DESC").
		Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}

// GetGameByID returns a single game with its players.
func (s *GameService) GetGameByID(c *fiber.Ctx) error {
	game, err := loadGame(s.DB, currentUserID(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(game)
}

// CreateGame records a game from explicit buy-ins and cash-outs.
func (s *GameService) CreateGame(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var in gameInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	d, err := in.draft(userID)
	if err != nil {
		return respondError(c, err, "")
	}

	var game *models.Game
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		game, err = SaveGame(tx, d, nil)
		return err
	})
	if err != nil {
		return respondError(c, err, "failed to create game")
	}

	log.Printf("🃏 [GAMES] created game %s with %d players (discrepancy %s)",
		game.ID, len(game.Players), game.Discrepancy.StringFixed(2))
	return c.Status(fiber.StatusCreated).JSON(game)
}

// UpdateGame replaces a game's date, notes and player rows.
func (s *GameService) UpdateGame(c *fiber.Ctx) error {
	userID := currentUserID(c)

	existing, err := loadGame(s.DB, userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var in gameInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	d, err := in.draft(userID)
	if err != nil {
		return respondError(c, err, "")
	}

	var game *models.Game
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		game, err = SaveGame(tx, d, existing)
		return err
	})
	if err != nil {
		return respondError(c, err, "update transaction failed")
	}
	return c.JSON(game)
}

// DeleteGame removes a game and rolls its results out of player totals.
func (s *GameService) DeleteGame(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id := c.Params("id")

	game, err := loadGame(s.DB, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&models.GamePlayer{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Game{}, "id = ?", id).Error; err != nil {
			return err
		}
		return RecalculatePlayerStats(tx, rowPlayerIDs(game.Players)...)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete game"})
	}

	return c.JSON(fiber.Map{
		"message": "game deleted successfully",
		"id":      id,
	})
}

// ExportGame streams a game as CSV.
func (s *GameService) ExportGame(c *fiber.Ctx) error {
	game, err := loadGame(s.DB, currentUserID(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var buf bytes.Buffer
	if err := writeGameCSV(&buf, game); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to export game"})
	}

	c.Attachment(slug.Make("game "+game.Date.Format(models.DateLayout)) + ".csv")
	return c.Send(buf.Bytes())
}

func writeGameCSV(buf *bytes.Buffer, game *models.Game) error {
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"player", "buyin", "cashout", "profit"}); err != nil {
		return err
	}
	for _, gp := range game.Players {
		name := gp.PlayerID
		if gp.Player != nil {
			name = gp.Player.Name
		}
		if err := w.Write([]string{name, gp.Buyin.StringFixed(2), gp.Cashout.StringFixed(2), gp.Profit.StringFixed(2)}); err != nil {
			return err
		}
	}
	if err := w.Write([]string{"TOTAL", game.TotalBuyins.StringFixed(2), game.TotalCashouts.StringFixed(2), game.Discrepancy.StringFixed(2)}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
