package quota

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

type Record struct {
	UserID int64
	// uses counted for the current UTC day
	Count        int
	PremiumUntil *time.Time
}

type Settings struct {
	// 0 means the private chat with the user
	DestChatID      int64
	CaptionTemplate string
	ThumbnailPath   string
}

func (s Settings) Empty() bool {
	return s.DestChatID == 0 && s.CaptionTemplate == "" && s.ThumbnailPath == ""
}

// Store persists quota and delivery settings. Days are UTC dates formatted as 2006-01-02.
type Store interface {
	GetQuota(ctx context.Context, userID int64, day string) (Record, error)
	IncrementUsage(ctx context.Context, userID int64, day string) error
	// GrantPremium sets the premium expiry to days from now and returns it.
	GrantPremium(ctx context.Context, userID int64, days int) (time.Time, error)
	RevokePremium(ctx context.Context, userID int64) error

	GetSettings(ctx context.Context, userID int64) (Settings, error)
	SetDestination(ctx context.Context, userID, chatID int64) error
	SetCaption(ctx context.Context, userID int64, template string) error
	SetThumbnail(ctx context.Context, userID int64, path string) error
	ResetSettings(ctx context.Context, userID int64) error
}

// Directory tracks who talked to the bot, for bans and broadcasts.
type Directory interface {
	TouchUser(ctx context.Context, userID int64, name string) error
	SetBanned(ctx context.Context, userID int64, banned bool) error
	IsBanned(ctx context.Context, userID int64) (bool, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

func Day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
