package storage

import (
	"cinesocial/backend/internal/models"
	"context"
	"fmt"

	"gorm.io/gorm"
)

func (s *Service) CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	if req.Status == "" {
		req.Status = models.FriendRequestPending
	}
	return translate(s.DB.WithContext(ctx).Create(req).Error)
}

func (s *Service) GetFriendRequest(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := s.DB.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (s *Service) FindPendingRequest(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.DB.WithContext(ctx).
		Where("status = ?", models.FriendRequestPending).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		First(&req).Error
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (s *Service) ListIncomingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := s.DB.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// AcceptFriendRequest marks req accepted and writes both Friend rows in one transaction.
func (s *Service) AcceptFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sender, receiver models.User
		if err := tx.First(&sender, req.SenderID).Error; err != nil {
			return translate(err)
		}
		if err := tx.First(&receiver, req.ReceiverID).Error; err != nil {
			return translate(err)
		}

		res := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", req.ID, models.FriendRequestPending).
			Update("status", models.FriendRequestAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("friend request %d is no longer pending: %w", req.ID, ErrConflict)
		}

		rows := []models.Friend{
			{UserID: sender.ID, FriendID: receiver.ID, FriendName: receiver.Name},
			{UserID: receiver.ID, FriendID: sender.ID, FriendName: sender.Name},
		}
		if err := tx.Create(&rows).Error; err != nil {
			return translate(err)
		}
		req.Status = models.FriendRequestAccepted
		return nil
	})
}

func (s *Service) RejectFriendRequest(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", id, models.FriendRequestPending).
		Update("status", models.FriendRequestRejected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Friend{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&n).Error
	return n > 0, err
}

func (s *Service) ListFriends(ctx context.Context, userID uint) ([]models.Friend, error) {
	var friends []models.Friend
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("friend_name ASC").
		Find(&friends).Error
	return friends, err
}

// RemoveFriend deletes both directions of the friendship.
func (s *Service) RemoveFriend(ctx context.Context, a, b uint) error {
	res := s.DB.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Delete(&models.Friend{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) CountFriends(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Friend{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
