package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted message for a user, written fire-and-forget by
// the resolution engine and readable through the notifications API.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Notification model
func (Notification) TableName() string {
	return "notifications"
}
