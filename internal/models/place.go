package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Place is a venue with a location-scoped chat room. The room is open to a
// session only while that session is within chat range of the coordinates
// stored here.
type Place struct {
	// ID is the stable identifier of the place and of its chat room (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// Name is the display name shown on the map and in notifications.
	Name string `gorm:"type:text;not null" json:"name"`
	// Latitude/Longitude are WGS84 decimal degrees.
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	// IsActive marks whether the place participates in proximity evaluation.
	// Deactivated places are excluded everywhere and their room state dropped.
	IsActive bool `gorm:"default:true" json:"is_active"`
	// Tags are free-form labels ("cafe", "beach", "event").
	Tags pq.StringArray `gorm:"type:text[]" json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID for the place if one is not already set.
func (p *Place) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
