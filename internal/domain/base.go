package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the primary key and creation time shared by every record.
// IDs are generated in Go so the schema stays portable between postgres and sqlite.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Author is the denormalized author view attached to messages, statuses and files.
type Author struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UID      string    `gorm:"type:varchar(128)" json:"uid"`
	Name     string    `gorm:"type:varchar(255)" json:"name"`
	PhotoURL *string   `gorm:"column:photo_url;type:text" json:"photoURL"`
}

func (Author) TableName() string {
	return "users"
}
