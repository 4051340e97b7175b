package models

import "gorm.io/gorm"

// CheckIn records one location tick received from a session. Kept for the
// merchant dashboard's foot-traffic view; proximity state itself lives only
// in memory.
type CheckIn struct {
	gorm.Model

	SessionID string  `gorm:"type:text;not null;index"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
}
