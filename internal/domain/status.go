package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StatusLifetime is how long a posted status stays visible.
const StatusLifetime = 24 * time.Hour

// Status is an ephemeral per-user, per-group update. A user has at most one per group.
type Status struct {
	BaseModel
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_statuses_user_group,priority:1" json:"userId"`
	GroupID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_statuses_user_group,priority:2;index:idx_statuses_group_id" json:"groupId"`
	Text      *string        `gorm:"type:text" json:"text"`
	Music     datatypes.JSON `json:"music"`
	ExpiresAt time.Time      `gorm:"not null;index:idx_statuses_expires_at" json:"expiresAt"`
	User      *Author        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (Status) TableName() string {
	return "statuses"
}
