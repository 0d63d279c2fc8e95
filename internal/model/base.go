package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the uuid primary key shared by every engine entity.
// The id is assigned in BeforeCreate so the same schema runs on postgres and sqlite.
type Base struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
}

// BeforeCreate assigns a fresh uuid when the caller did not provide one
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
