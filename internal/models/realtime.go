package models

import "time"

// ChatMessage is the wire format exchanged with clients and published over
// the room's Redis channel. ID is filled in after the message is persisted.
type ChatMessage struct {
	ID       uint   `json:"id,omitempty"`
	SenderID string `json:"sender_id"`
	PlaceID  string `json:"place_id"`
	Content  string `json:"content"`
	Type     string `json:"type"` // "text", "system", "typing"
}

// LocationUpdate is the body of POST /location. Pointers distinguish a
// missing field from a zero coordinate.
type LocationUpdate struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// PlaceProximity is one place's evaluation result returned to the client.
type PlaceProximity struct {
	PlaceID     string  `json:"place_id"`
	Name        string  `json:"name"`
	DistanceM   float64 `json:"distance_m"`
	Tier        string  `json:"tier"`
	CanJoinChat bool    `json:"can_join_chat"`
	Notified    bool    `json:"notified"`
	Error       string  `json:"error,omitempty"`
}

// NotificationEvent is the payload published on the notification channel for
// external dispatchers (push gateways, dashboards).
type NotificationEvent struct {
	SessionID string    `json:"session_id"`
	PlaceID   string    `json:"place_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}
