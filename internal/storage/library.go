package storage

import (
	"cinesocial/backend/internal/models"
	"context"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddToWishlist is idempotent on (user, movie); created reports whether a row was inserted.
func (s *Service) AddToWishlist(ctx context.Context, item *models.WishlistItem) (bool, error) {
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(item)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID uint, movieID string) error {
	res := s.DB.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ListWishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error
	return items, err
}

func (s *Service) CountWishlist(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.WishlistItem{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (s *Service) GetWatchEntry(ctx context.Context, userID uint, movieID string) (*models.WatchHistory, error) {
	var entry models.WatchHistory
	err := s.DB.WithContext(ctx).Where("user_id = ? AND movie_id = ?", userID, movieID).First(&entry).Error
	if err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

func (s *Service) GetWatchEntryByID(ctx context.Context, id uint) (*models.WatchHistory, error) {
	var entry models.WatchHistory
	if err := s.DB.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

// SaveWatchEntry inserts a new entry or updates an existing one (by ID).
func (s *Service) SaveWatchEntry(ctx context.Context, entry *models.WatchHistory) error {
	return translate(s.DB.WithContext(ctx).Save(entry).Error)
}

func (s *Service) DeleteWatchEntry(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.WatchHistory{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ListWatchHistory(ctx context.Context, userID uint, page, pageSize int) ([]models.WatchHistory, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.WatchHistory{}).
		Where("user_id = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.WatchHistory
	err := q.Order("watched_at DESC").
		Offset(offset(page, pageSize)).
		Limit(pageSize).
		Find(&entries).Error
	return entries, total, err
}

// GetWatchStats aggregates the diary; the average is rounded to one decimal.
func (s *Service) GetWatchStats(ctx context.Context, userID uint) (models.WatchStats, error) {
	var row struct {
		Watched int64
		Rated   int64
		Avg     *float64
		Reviews int64
	}
	err := s.DB.WithContext(ctx).Model(&models.WatchHistory{}).
		Select(`COUNT(*) AS watched,
			COUNT(rating) AS rated,
			AVG(rating) AS avg,
			COUNT(NULLIF(TRIM(review), '')) AS reviews`).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return models.WatchStats{}, err
	}

	stats := models.WatchStats{
		TotalWatched: row.Watched,
		TotalRated:   row.Rated,
		TotalReviews: row.Reviews,
	}
	if row.Avg != nil {
		stats.AverageRating = math.Round(*row.Avg*10) / 10
	}
	return stats, nil
}

func (s *Service) FavoriteMovies(ctx context.Context, userID uint, minRating, limit int) ([]models.WatchHistory, error) {
	var entries []models.WatchHistory
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND rating >= ?", userID, minRating).
		Order("rating DESC").
		Order("watched_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// LikeMovie is idempotent.
func (s *Service) LikeMovie(ctx context.Context, userID uint, movieID string) error {
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.MovieLike{UserID: userID, MovieID: movieID}).Error
}

func (s *Service) ListLikedMovieIDs(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.MovieLike{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("movie_id", &ids).Error
	return ids, err
}
