package models

import "gorm.io/gorm"

// ChatHistory represents a saved room message in the PostgreSQL database.
// The embedded gorm.Model provides ID, CreatedAt, UpdatedAt, and DeletedAt
// fields, which serve as the message ID and timestamps.
type ChatHistory struct {
	gorm.Model

	// PlaceID is the place whose room the message was sent in.
	PlaceID string `gorm:"type:uuid;not null;index:idx_place_msg"`
	// SenderID is the anonymous session ID of the sender.
	SenderID string `gorm:"type:text;not null;index:idx_place_msg"`
	// Content is the message body.
	Content string `gorm:"type:text;not null"`
	// Type indicates the kind of message (e.g. "text", "system", "typing").
	Type string `gorm:"type:text;not null"`
}
