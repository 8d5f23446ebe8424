package models

import "github.com/shopspring/decimal"

// Player is a person at the table. The aggregate columns are derived from
// game_players and settlements and rewritten on every mutation.
type Player struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID string `json:"user_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_players_owner_name"`
	Name   string `json:"name" gorm:"not null;type:varchar(100);uniqueIndex:idx_players_owner_name"`

	// 💰 running totals
	NetProfit     decimal.Decimal `json:"net_profit" gorm:"type:numeric(14,2);not null;default:0"`
	TotalBuyins   decimal.Decimal `json:"total_buyins" gorm:"type:numeric(14,2);not null;default:0"`
	TotalCashouts decimal.Decimal `json:"total_cashouts" gorm:"type:numeric(14,2);not null;default:0"`
	GamesPlayed   int64           `json:"games_played" gorm:"not null;default:0"`

	Timestamps
}
