package storage

import (
	"cinesocial/backend/internal/models"
	"context"

	"gorm.io/gorm/clause"
)

func (s *Service) GetInsight(ctx context.Context, title string) (*models.MovieInsight, error) {
	var ins models.MovieInsight
	err := s.DB.WithContext(ctx).
		Where("movie_title = ?", models.NormalizeTitle(title)).
		First(&ins).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ins, nil
}

// SaveInsight upserts by normalized title.
func (s *Service) SaveInsight(ctx context.Context, insight *models.MovieInsight) error {
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(insight).Error
}
