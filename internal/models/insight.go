package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MovieInsight caches resolved links for a title.
type MovieInsight struct {
	MovieTitle     string         `gorm:"primaryKey;type:text" json:"movieTitle"`
	TrailerVideoID string         `gorm:"type:text" json:"trailerVideoId,omitempty"`
	ImdbURL        string         `gorm:"type:text" json:"imdbUrl,omitempty"`
	WikiURL        string         `gorm:"type:text" json:"wikiUrl,omitempty"`
	ReviewsURL     string         `gorm:"type:text" json:"reviewsUrl,omitempty"`
	Platforms      pq.StringArray `gorm:"type:text[]" json:"platforms"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// NormalizeTitle produces the MovieInsight key for a title.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// BeforeSave keeps the key normalized regardless of caller input.
func (m *MovieInsight) BeforeSave(_ *gorm.DB) error {
	m.MovieTitle = NormalizeTitle(m.MovieTitle)
	return nil
}
