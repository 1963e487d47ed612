package storage

import (
	"cinesocial/backend/internal/models"
	"context"
	"fmt"
	"slices"
	"time"
)

// SaveChatMessage inserts msg and fills in its ID.
func (s *Service) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("insert chat message %d->%d: %w", msg.SenderID, msg.ReceiverID, err)
	}
	return nil
}

// GetChatHistory selects the newest page (DESC + LIMIT) and returns it ascending.
func (s *Service) GetChatHistory(ctx context.Context, a, b uint, limit int, before *time.Time) ([]models.ChatMessage, error) {
	q := s.DB.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
	if before != nil {
		q = q.Where(`"timestamp" < ?`, *before)
	}

	var page []models.ChatMessage
	err := q.Order(`"timestamp" DESC`).Order("id DESC").Limit(limit).Find(&page).Error
	if err != nil {
		return nil, fmt.Errorf("query chat history %d<->%d: %w", a, b, err)
	}

	slices.Reverse(page)
	return page, nil
}
