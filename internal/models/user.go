package models

import "time"

// User is a registered account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:text;not null" json:"name"`
	Email        string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	// TelegramChatID links the account to a Telegram chat for offline pings.
	TelegramChatID *int64    `gorm:"uniqueIndex" json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}
