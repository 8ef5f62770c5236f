package models

import (
	"time"

	"gorm.io/gorm"

	"patrimo/internal/uuid"
)

// Base carries the columns shared by every mutable table: a UUIDv7 primary
// key, timestamps, and a soft-delete marker. Quote deliberately does not
// embed it; quotes are append-only and never soft-deleted.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate assigns a UUIDv7 so primary keys sort by creation time.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
