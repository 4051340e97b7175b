package models

import "gorm.io/gorm"

// NotificationLog is the audit record of a proximity alert the watcher asked
// the sink to deliver. Delivered=false means a downstream channel rejected it;
// the alert is not retried.
type NotificationLog struct {
	gorm.Model

	SessionID string `gorm:"type:text;not null;index"`
	PlaceID   string `gorm:"type:uuid;not null;index"`
	Title     string `gorm:"type:text"`
	Body      string `gorm:"type:text"`
	Delivered bool
}
