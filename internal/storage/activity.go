package storage

import (
	"cinesocial/backend/internal/models"
	"context"

	"gorm.io/gorm"
)

func (s *Service) LogActivity(ctx context.Context, entry *models.ActivityLog) error {
	return s.DB.WithContext(ctx).Create(entry).Error
}

func (s *Service) ListActivity(ctx context.Context, userIDs []uint, page, pageSize int) ([]models.ActivityLog, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.ActivityLog{})
	if userIDs != nil {
		if len(userIDs) == 0 {
			return []models.ActivityLog{}, 0, nil
		}
		q = q.Where("user_id IN ?", userIDs)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.ActivityLog
	err := q.Order("created_at DESC").
		Order("id DESC").
		Offset(offset(page, pageSize)).
		Limit(pageSize).
		Find(&entries).Error
	return entries, total, err
}
