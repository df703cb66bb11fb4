package database

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ChatID       int64 `gorm:"uniqueIndex;not null"`
	Name         string
	PremiumUntil *time.Time
	Banned       bool
}

// DailyUsage counts delivered tasks of one user on one UTC day.
type DailyUsage struct {
	ID     uint   `gorm:"primarykey"`
	UserID int64  `gorm:"uniqueIndex:idx_usage_user_day;not null"`
	Day    string `gorm:"uniqueIndex:idx_usage_user_day;size:10;not null"`
	Used   int    `gorm:"not null;default:0"`
}

type Settings struct {
	gorm.Model
	ChatID          int64 `gorm:"uniqueIndex;not null"`
	DestChatID      int64
	CaptionTemplate string
	ThumbnailPath   string
}
