package chathub

import "popin/backend/internal/models"

// Client is the interface for any type of connection bound to a place room.
// It abstracts the underlying transport so the hub can manage WebSocket
// clients and test doubles uniformly.
type Client interface {
	// GetSessionID returns the anonymous session this connection belongs to.
	GetSessionID() string
	// GetPlaceID returns the place whose room the client has joined.
	GetPlaceID() string

	// GetSendChannel returns the channel the hub writes outbound messages to.
	GetSendChannel() chan<- models.ChatMessage

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and associated channels.
	Close()
}
