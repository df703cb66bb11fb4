package database

import (
	"context"
	"errors"
	"time"

	"github.com/krau/SaveLink-Bot/core/quota"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ quota.Store     = (*Store)(nil)
	_ quota.Directory = (*Store)(nil)
)

// Store implements the quota and settings contracts on gorm.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) ensureUser(ctx context.Context, chatID int64) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).
		Where(User{ChatID: chatID}).
		FirstOrCreate(&user).Error
	return &user, err
}

func (s *Store) GetQuota(ctx context.Context, userID int64, day string) (quota.Record, error) {
	rec := quota.Record{UserID: userID}
	var user User
	err := s.db.WithContext(ctx).Where("chat_id = ?", userID).First(&user).Error
	switch {
	case err == nil:
		rec.PremiumUntil = user.PremiumUntil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return rec, err
	}
	var usage DailyUsage
	err = s.db.WithContext(ctx).Where("user_id = ? AND day = ?", userID, day).First(&usage).Error
	switch {
	case err == nil:
		rec.Count = usage.Used
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return rec, err
	}
	return rec, nil
}

func (s *Store) IncrementUsage(ctx context.Context, userID int64, day string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{"used": gorm.Expr("used + 1")}),
	}).Create(&DailyUsage{UserID: userID, Day: day, Used: 1}).Error
}

func (s *Store) GrantPremium(ctx context.Context, userID int64, days int) (time.Time, error) {
	until := s.now().Add(time.Duration(days) * 24 * time.Hour).UTC()
	user, err := s.ensureUser(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("premium_until", until).Error; err != nil {
		return time.Time{}, err
	}
	return until, nil
}

func (s *Store) RevokePremium(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Model(&User{}).
		Where("chat_id = ?", userID).
		Update("premium_until", nil).Error
}

func (s *Store) GetSettings(ctx context.Context, userID int64) (quota.Settings, error) {
	var st Settings
	err := s.db.WithContext(ctx).Where("chat_id = ?", userID).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return quota.Settings{}, nil
	}
	if err != nil {
		return quota.Settings{}, err
	}
	return quota.Settings{
		DestChatID:      st.DestChatID,
		CaptionTemplate: st.CaptionTemplate,
		ThumbnailPath:   st.ThumbnailPath,
	}, nil
}

func (s *Store) updateSettings(ctx context.Context, userID int64, column string, value any) error {
	var st Settings
	if err := s.db.WithContext(ctx).Where(Settings{ChatID: userID}).FirstOrCreate(&st).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&st).Update(column, value).Error
}

func (s *Store) SetDestination(ctx context.Context, userID, chatID int64) error {
	return s.updateSettings(ctx, userID, "dest_chat_id", chatID)
}

func (s *Store) SetCaption(ctx context.Context, userID int64, template string) error {
	return s.updateSettings(ctx, userID, "caption_template", template)
}

func (s *Store) SetThumbnail(ctx context.Context, userID int64, path string) error {
	return s.updateSettings(ctx, userID, "thumbnail_path", path)
}

func (s *Store) ResetSettings(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Unscoped().Where("chat_id = ?", userID).Delete(&Settings{}).Error
}

func (s *Store) TouchUser(ctx context.Context, userID int64, name string) error {
	user, err := s.ensureUser(ctx, userID)
	if err != nil {
		return err
	}
	if name == "" || user.Name == name {
		return nil
	}
	return s.db.WithContext(ctx).Model(user).Update("name", name).Error
}

func (s *Store) SetBanned(ctx context.Context, userID int64, banned bool) error {
	user, err := s.ensureUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("banned", banned).Error
}

func (s *Store) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var user User
	err := s.db.WithContext(ctx).Where("chat_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return user.Banned, err
}

func (s *Store) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&User{}).Where("banned = ?", false).Order("id").Pluck("chat_id", &ids).Error
	return ids, err
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&User{}).Count(&n).Error
	return n, err
}
