package models

import "time"

// FriendRequestStatus is the lifecycle state of a FriendRequest.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "Pending"
	FriendRequestAccepted FriendRequestStatus = "Accepted"
	FriendRequestRejected FriendRequestStatus = "Rejected"
)

// Friend is one direction of a friendship; accepting a request writes both.
type Friend struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_friend_pair" json:"userId"`
	FriendID   uint      `gorm:"not null;uniqueIndex:idx_friend_pair" json:"friendId"`
	FriendName string    `gorm:"type:text" json:"friendName"`
	CreatedAt  time.Time `json:"createdAt"`
}

type FriendRequest struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	SenderID   uint                `gorm:"not null;index" json:"senderId"`
	ReceiverID uint                `gorm:"not null;index" json:"receiverId"`
	Status     FriendRequestStatus `gorm:"type:text;not null;default:Pending" json:"status"`
	CreatedAt  time.Time           `json:"createdAt"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

// Activity types written to the activity log.
const (
	ActivityWatched      = "watched"
	ActivityWatchedRated = "watched_rated"
	ActivityWishlisted   = "wishlisted"
	ActivityCommented    = "commented"
)

// ActivityLog is an append-only feed entry. Details holds a small JSON object.
type ActivityLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"userId"`
	UserName     string    `gorm:"type:text" json:"userName"`
	ActivityType string    `gorm:"type:text;not null" json:"activityType"`
	MovieID      string    `gorm:"type:text" json:"movieId"`
	MovieTitle   string    `gorm:"type:text" json:"movieTitle"`
	MoviePoster  string    `gorm:"type:text" json:"moviePoster"`
	Details      string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}
