package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement is a payment from one player to another to clear debt.
// The payer's net profit goes up by Amount and the receiver's goes down.
type Settlement struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string          `json:"user_id" gorm:"not null;index;type:varchar(36)"`
	FromPlayerID string          `json:"from_player_id" gorm:"not null;index;type:varchar(36)"`
	ToPlayerID   string          `json:"to_player_id" gorm:"not null;index;type:varchar(36)"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Date         time.Time       `json:"date" gorm:"not null;index"`
	Notes        string          `json:"notes"`

	FromPlayer *Player `json:"from_player,omitempty" gorm:"foreignKey:FromPlayerID"`
	ToPlayer   *Player `json:"to_player,omitempty" gorm:"foreignKey:ToPlayerID"`

	Timestamps
}
