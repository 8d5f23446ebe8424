// models/game.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of game and settlement dates.
const DateLayout = "2006-01-02"

// Game is one recorded session.
type Game struct {
	ID     string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID string    `json:"user_id" gorm:"not null;index;type:varchar(36)"`
	Date   time.Time `json:"date" gorm:"not null;index"`
	Notes  string    `json:"notes"`

	// 🧮 derived from Players on every write
	TotalBuyins   decimal.Decimal `json:"total_buyins" gorm:"type:numeric(14,2);not null;default:0"`
	TotalCashouts decimal.Decimal `json:"total_cashouts" gorm:"type:numeric(14,2);not null;default:0"`
	Discrepancy   decimal.Decimal `json:"discrepancy" gorm:"type:numeric(14,2);not null;default:0"` // cashouts - buyins

	// 🖼️ screenshot the results were read from (bulk OCR import)
	SourceImageURL string `json:"source_image_url,omitempty"`

	Players []GamePlayer `json:"players" gorm:"foreignKey:GameID"`

	Timestamps
}

// GamePlayer is one player's result in a game.
type GamePlayer struct {
	ID       string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	GameID   string          `json:"game_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_game_players_game_player"`
	PlayerID string          `json:"player_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_game_players_game_player;index"`
	Buyin    decimal.Decimal `json:"buyin" gorm:"type:numeric(14,2);not null;default:0"`
	Cashout  decimal.Decimal `json:"cashout" gorm:"type:numeric(14,2);not null;default:0"`
	Profit   decimal.Decimal `json:"profit" gorm:"type:numeric(14,2);not null;default:0"` // cashout - buyin

	Player *Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}

// Recalculate refreshes the game totals from its rows.
func (g *Game) Recalculate() {
	g.TotalBuyins = decimal.Zero
	g.TotalCashouts = decimal.Zero
	for i := range g.Players {
		gp := &g.Players[i]
		gp.Profit = gp.Cashout.Sub(gp.Buyin)
		g.TotalBuyins = g.TotalBuyins.Add(gp.Buyin)
		g.TotalCashouts = g.TotalCashouts.Add(gp.Cashout)
	}
	g.Discrepancy = g.TotalCashouts.Sub(g.TotalBuyins)
}
