package chathub

import "cinesocial/backend/internal/models"

// Client is one live connection of a user. A user may hold several at once
// (tabs, devices); presence is derived from how many are registered.
type Client interface {
	// GetConnID returns the connection handle, unique per connection.
	GetConnID() string
	// GetUserID returns the authenticated owner of the connection.
	GetUserID() uint

	// Send queues a frame without blocking. It reports false when the
	// queue is full or the client has been closed; the frame is dropped.
	Send(frame models.Frame) bool

	// Run starts the client's read and write pumps.
	Run()
	// Close stops the client. Safe to call more than once.
	Close()
}
