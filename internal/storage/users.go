package storage

import (
	"cinesocial/backend/internal/models"
	"context"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.DB.WithContext(ctx).Create(user).Error)
}

func (s *Service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UsersExist reports whether every id names a stored user.
func (s *Service) UsersExist(ctx context.Context, ids ...uint) (bool, error) {
	ids = lo.Uniq(ids)
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return false, err
	}
	return n == int64(len(ids)), nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// LinkTelegramChat stores the Telegram chat used for offline notifications.
// A chat belongs to one account at a time, so any previous owner is detached
// in the same transaction.
func (s *Service) LinkTelegramChat(ctx context.Context, userID uint, chatID int64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("telegram_chat_id = ? AND id <> ?", chatID, userID).
			Update("telegram_chat_id", nil).Error; err != nil {
			return err
		}
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("telegram_chat_id", chatID)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UnlinkTelegramChat clears the chat from whichever user holds it.
func (s *Service) UnlinkTelegramChat(ctx context.Context, chatID int64) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("telegram_chat_id = ?", chatID).
		Update("telegram_chat_id", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
