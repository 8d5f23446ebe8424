package services

import (
	"poker-ledger/models"
	"poker-ledger/parser"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// Record is one player's result in one game.
type Record struct {
	PlayerID   string          `json:"player_id"`
	PlayerName string          `json:"player_name"`
	GameID     string          `json:"game_id"`
	Profit     decimal.Decimal `json:"profit"`
}

// Summary is the ledger overview.
type Summary struct {
	Games           int64           `json:"games"`
	Players         int64           `json:"players"`
	TotalBuyins     decimal.Decimal `json:"total_buyins"`
	TotalCashouts   decimal.Decimal `json:"total_cashouts"`
	UnbalancedGames int64           `json:"unbalanced_games"`
	LargestWin      *Record         `json:"largest_win"`
	LargestLoss     *Record         `json:"largest_loss"`
}

// GetLeaderboard ranks players by net profit.
func (s *StatsService) GetLeaderboard(c *fiber.Ctx) error {
	players := []models.Player{}
	if err := s.DB.Where("user_id = ?", currentUserID(c)).
		Order("net_profit DESC, name ASC").
		Find(&players).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch leaderboard"})
	}
	return c.JSON(players)
}

// GetSummary returns totals across the caller's ledger.
func (s *StatsService) GetSummary(c *fiber.Ctx) error {
	summary, err := s.Summarize(currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to build summary"})
	}
	return c.JSON(summary)
}

func (s *StatsService) Summarize(userID string) (*Summary, error) {
	var games []models.Game
	if err := s.DB.Preload("Players.Player").Where("user_id = ?", userID).Find(&games).Error; err != nil {
		return nil, err
	}
	sum := &Summary{TotalBuyins: decimal.Zero, TotalCashouts: decimal.Zero, Games: int64(len(games))}

	if err := s.DB.Model(&models.Player{}).Where("user_id = ?", userID).Count(&sum.Players).Error; err != nil {
		return nil, err
	}

	for _, g := range games {
		sum.TotalBuyins = sum.TotalBuyins.Add(g.TotalBuyins)
		sum.TotalCashouts = sum.TotalCashouts.Add(g.TotalCashouts)
		if g.Discrepancy.Abs().GreaterThan(parser.BalanceTolerance) {
			sum.UnbalancedGames++
		}
		for _, gp := range g.Players {
			r := &Record{PlayerID: gp.PlayerID, GameID: g.ID, Profit: gp.Profit}
			if gp.Player != nil {
				r.PlayerName = gp.Player.Name
			}
			if gp.Profit.IsPositive() && (sum.LargestWin == nil || gp.Profit.GreaterThan(sum.LargestWin.Profit)) {
				sum.LargestWin = r
			}
			if gp.Profit.IsNegative() && (sum.LargestLoss == nil || gp.Profit.LessThan(sum.LargestLoss.Profit)) {
				sum.LargestLoss = r
			}
		}
	}
	return sum, nil
}
