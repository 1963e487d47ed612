package models

import "time"

type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"userId"`
	Name            string    `gorm:"type:text" json:"name"`
	MovieID         string    `gorm:"type:text;not null;index" json:"movieId"`
	Text            string    `gorm:"type:text;not null" json:"text"`
	ParentCommentID *uint     `gorm:"index" json:"parentCommentId,omitempty"`
	Likes           int       `gorm:"not null;default:0" json:"likes"`
	Dislikes        int       `gorm:"not null;default:0" json:"dislikes"`
	CreatedAt       time.Time `json:"createdAt"`
}

type CommentReaction struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_reaction_user_comment"`
	CommentID uint `gorm:"not null;uniqueIndex:idx_reaction_user_comment"`
	IsLike    bool `gorm:"not null"`
}

// Reaction toggle outcomes.
const (
	ReactionAdded    = "added"
	ReactionRemoved  = "removed"
	ReactionSwitched = "switched"
)

// ReactionResult is returned after toggling a reaction.
type ReactionResult struct {
	Action   string `json:"action"`
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
}
