package models

import "time"

// ChatMessage is one persisted direct message. Rows are never updated.
// History is ordered by Timestamp with ID breaking ties.
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index:idx_chat_pair" json:"senderId"`
	ReceiverID uint      `gorm:"not null;index:idx_chat_pair" json:"receiverId"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
}

// Involves reports whether the message belongs to the conversation of a and b.
func (m ChatMessage) Involves(a, b uint) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// Before reports whether m sorts strictly before o in conversation order.
func (m ChatMessage) Before(o ChatMessage) bool {
	if m.Timestamp.Equal(o.Timestamp) {
		return m.ID < o.ID
	}
	return m.Timestamp.Before(o.Timestamp)
}
