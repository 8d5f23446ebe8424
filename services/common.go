package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"poker-ledger/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrDuplicatePlayer = errors.New("a player with this name already exists")
	ErrPlayerInUse     = errors.New("player is referenced by games or settlements")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// currentUserID returns the id set by the auth middleware.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// respondError maps service errors to HTTP answers.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrPlayerNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": errMessage(err)})
	case errors.Is(err, ErrDuplicatePlayer), errors.Is(err, gorm.ErrDuplicatedKey):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": ErrDuplicatePlayer.Error()})
	case errors.Is(err, ErrPlayerInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}

func errMessage(err error) string {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "not found"
	}
	return err.Error()
}

// parseDate accepts YYYY-MM-DD or RFC3339; empty means today (UTC).
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if d, err := time.Parse(models.DateLayout, s); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, validationError("invalid date %q (use YYYY-MM-DD)", s)
	}
	return d.UTC(), nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// loadOwnedPlayers fetches the given players and fails unless every one of
// them belongs to userID.
func loadOwnedPlayers(tx *gorm.DB, userID string, ids []string) (map[string]models.Player, error) {
	ids = uniqueStrings(ids)
	out := make(map[string]models.Player, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var players []models.Player
	if err := tx.Where("user_id = ? AND id IN ?", userID, ids).Find(&players).Error; err != nil {
		return nil, err
	}
	for _, p := range players {
		out[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
	}
	return out, nil
}

// findPlayerByName does a case-insensitive lookup within a user's roster.
func findPlayerByName(tx *gorm.DB, userID, name string) (*models.Player, error) {
	var p models.Player
	err := tx.Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, strings.TrimSpace(name)).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
