package models

// User owns a private roster of players, games and settlements.
type User struct {
	ID           string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string `json:"username" gorm:"uniqueIndex;not null;type:varchar(32)"`
	PasswordHash string `json:"-" gorm:"not null"`

	Timestamps
}
