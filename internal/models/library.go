package models

import "time"

type WishlistItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_movie" json:"userId"`
	MovieID     string    `gorm:"type:text;not null;uniqueIndex:idx_wishlist_user_movie" json:"movieId"`
	MovieTitle  string    `gorm:"type:text" json:"movieTitle"`
	MoviePoster string    `gorm:"type:text" json:"moviePoster"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WatchHistory is a diary entry; one per (user, movie).
type WatchHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_watch_user_movie" json:"userId"`
	MovieID     string    `gorm:"type:text;not null;uniqueIndex:idx_watch_user_movie" json:"movieId"`
	MovieTitle  string    `gorm:"type:text" json:"movieTitle"`
	MoviePoster string    `gorm:"type:text" json:"moviePoster"`
	Rating      *int      `json:"rating,omitempty"`
	Review      string    `gorm:"type:text" json:"review,omitempty"`
	WatchedAt   time.Time `gorm:"index" json:"watchedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type MovieLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_movie" json:"userId"`
	MovieID   string    `gorm:"type:text;not null;uniqueIndex:idx_like_user_movie" json:"movieId"`
	CreatedAt time.Time `json:"createdAt"`
}

// WatchStats aggregates a user's diary.
type WatchStats struct {
	TotalWatched  int64   `json:"totalWatched"`
	TotalRated    int64   `json:"totalRated"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int64   `json:"totalReviews"`
}
