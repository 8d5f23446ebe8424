package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"poker-ledger/fuzzy"
	"poker-ledger/models"
	"poker-ledger/parser"
	"poker-ledger/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxImageSize caps OCR uploads.
const maxImageSize = 10 << 20

// BulkGameService turns pasted or photographed result lists into games.
type BulkGameService struct {
	DB     *gorm.DB
	OCR    TextExtractor
	Images utils.ImageStore
}

func NewBulkGameService(db *gorm.DB, ocr TextExtractor, images utils.ImageStore) *BulkGameService {
	return &BulkGameService{DB: db, OCR: ocr, Images: images}
}

type bulkParseRequest struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

type BulkPreview struct {
	parser.Preview
	GameDate string `json:"gameDate"`
}

type BulkParseResponse struct {
	Success    bool                    `json:"success"`
	Preview    BulkPreview             `json:"preview"`
	Matching   fuzzy.Result            `json:"matching"`
	Validation parser.ValidationResult `json:"validation"`
	Text       string                  `json:"text,omitempty"`
	ImageURL   string                  `json:"imageUrl,omitempty"`
}

type bulkPlayerInput struct {
	Name string `json:"name"`
	// Profit stays raw so a malformed amount reaches validation instead of
	// failing the whole body.
	Profit   json.RawMessage `json:"profit"`
	PlayerID string          `json:"playerId"`
}

// profit decodes a number or numeric string; anything else is invalid.
func (p bulkPlayerInput) profit() decimal.NullDecimal {
	var out decimal.NullDecimal
	if len(p.Profit) == 0 {
		return out
	}
	if err := out.UnmarshalJSON(p.Profit); err != nil {
		return decimal.NullDecimal{}
	}
	return out
}

type bulkCreateRequest struct {
	Date             string            `json:"date"`
	Notes            string            `json:"notes"`
	Players          []bulkPlayerInput `json:"players"`
	CreateNewPlayers bool              `json:"createNewPlayers"`
	SourceImageURL   string            `json:"sourceImageUrl"`
}

type BulkSummary struct {
	PlayerCount   int             `json:"playerCount"`
	TotalBuyins   decimal.Decimal `json:"totalBuyins"`
	TotalCashouts decimal.Decimal `json:"totalCashouts"`
	Discrepancy   decimal.Decimal `json:"discrepancy"`
	NewPlayers    []string        `json:"newPlayers"`
}

// roster loads the user's players fresh, alphabetically.
func (s *BulkGameService) roster(userID string) ([]fuzzy.RosterEntry, error) {
	var players []models.Player
	if err := s.DB.Where("user_id = ?", userID).Order("name ASC").Find(&players).Error; err != nil {
		return nil, err
	}
	out := make([]fuzzy.RosterEntry, len(players))
	for i, p := range players {
		out[i] = fuzzy.RosterEntry{ID: p.ID, Name: p.Name}
	}
	return out, nil
}

// Analyze parses text and matches it against the user's roster.
func (s *BulkGameService) Analyze(userID, text, date string) (*BulkParseResponse, error) {
	gameDate, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster(userID)
	if err != nil {
		return nil, err
	}

	entries := parser.ParseText(text)
	inputs := make([]fuzzy.Input, len(entries))
	for i, e := range entries {
		inputs[i] = fuzzy.Input{Name: e.Name, Profit: e.Profit.Decimal}
	}

	return &BulkParseResponse{
		Success: true,
		Preview: BulkPreview{
			Preview:  parser.GeneratePreview(entries),
			GameDate: gameDate.Format(models.DateLayout),
		},
		Matching:   fuzzy.MatchPlayers(inputs, roster),
		Validation: parser.ValidateParsedData(entries),
	}, nil
}

// ParseBulkGame previews a pasted result list without writing anything.
func (s *BulkGameService) ParseBulkGame(c *fiber.Ctx) error {
	var in bulkParseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if strings.TrimSpace(in.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "text is required"})
	}

	res, err := s.Analyze(currentUserID(c), in.Text, in.Date)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to parse game"})
	}
	return c.JSON(res)
}

// resolvePlayers maps each entry to a player id, creating players when
// allowed. It returns the ids in entry order and the names it created.
func resolvePlayers(tx *gorm.DB, userID string, in []bulkPlayerInput, createNew bool) ([]string, []string, error) {
	ids := make([]string, len(in))
	var missing []string
	for i, p := range in {
		if p.PlayerID != "" {
			ids[i] = p.PlayerID
			continue
		}
		existing, err := findPlayerByName(tx, userID, p.Name)
		switch {
		case err == nil:
			ids[i] = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			if !createNew {
				missing = append(missing, strings.TrimSpace(p.Name))
			}
		default:
			return nil, nil, err
		}
	}
	if len(missing) > 0 {
		return nil, nil, validationError("unknown players: %s (set createNewPlayers to add them)", strings.Join(missing, ", "))
	}

	if _, err := loadOwnedPlayers(tx, userID, ids); err != nil {
		return nil, nil, err
	}

	created := []string{}
	for i, p := range in {
		if ids[i] != "" {
			continue
		}
		np, err := CreatePlayer(tx, userID, p.Name)
		if err != nil {
			return nil, nil, err
		}
		ids[i] = np.ID
		created = append(created, np.Name)
	}

	seen := make(map[string]string, len(ids))
	for i, id := range ids {
		if prev, ok := seen[id]; ok {
			return nil, nil, validationError("%q and %q resolve to the same player", prev, in[i].Name)
		}
		seen[id] = in[i].Name
	}
	return ids, created, nil
}

// CreateBulkGame persists a confirmed bulk preview as a game.
func (s *BulkGameService) CreateBulkGame(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var in bulkCreateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}

	entries := make([]parser.ParsedEntry, len(in.Players))
	for i, p := range in.Players {
		entries[i] = parser.ParsedEntry{Name: strings.TrimSpace(p.Name), Profit: p.profit()}
	}
	if v := parser.ValidateParsedData(entries); !v.IsValid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"error":      "validation failed",
			"validation": v,
		})
	}

	var (
		game    *models.Game
		created []string
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ids, newNames, err := resolvePlayers(tx, userID, in.Players, in.CreateNewPlayers)
		if err != nil {
			return err
		}
		created = newNames

		d := GameDraft{UserID: userID, Date: in.Date, Notes: in.Notes, SourceImageURL: in.SourceImageURL}
		for i, e := range entries {
			bc := parser.ConvertProfitToBuyinCashout(e.Profit.Decimal)
			d.Rows = append(d.Rows, models.GamePlayer{PlayerID: ids[i], Buyin: bc.Buyin, Cashout: bc.Cashout})
		}

		game, err = SaveGame(tx, d, nil)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return respondError(c, err, "failed to create game")
	}

	log.Printf("📥 [BULK] created game %s with %d players, %d new", game.ID, len(game.Players), len(created))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"game":    game,
		"summary": BulkSummary{
			PlayerCount:   len(game.Players),
			TotalBuyins:   game.TotalBuyins,
			TotalCashouts: game.TotalCashouts,
			Discrepancy:   game.Discrepancy,
			NewPlayers:    created,
		},
	})
}

// ParseBulkImage reads a results screenshot, stores it and previews the
// recognised text like ParseBulkGame.
func (s *BulkGameService) ParseBulkImage(c *fiber.Ctx) error {
	if s.OCR == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "error": ErrOCRUnavailable.Error()})
	}
	userID := currentUserID(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "image file is required"})
	}
	if fileHeader.Size > maxImageSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"success": false, "error": "image is too large"})
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "file must be an image"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "failed to read image"})
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "failed to read image"})
	}

	var imageURL string
	if s.Images != nil {
		key := fmt.Sprintf("screenshots/%s/%s%s", userID, uuid.NewString(), strings.ToLower(filepath.Ext(fileHeader.Filename)))
		imageURL, err = s.Images.Save(c.UserContext(), key, data, contentType)
		if err != nil {
			log.Printf("⚠️ [BULK] failed to store screenshot: %v", err)
			imageURL = ""
		}
	}

	text, err := s.OCR.ExtractText(c.UserContext(), data, contentType)
	if err != nil {
		if errors.Is(err, ErrOCRUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		log.Printf("❌ [BULK] OCR failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "error": "failed to read text from image"})
	}

	res, err := s.Analyze(userID, text, c.FormValue("date"))
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to parse game"})
	}
	res.Text = text
	res.ImageURL = imageURL
	return c.JSON(res)
}
