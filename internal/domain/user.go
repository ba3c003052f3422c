package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role stored on a user record.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is the durable identity keyed by the external subject id (UID).
type User struct {
	BaseModel
	UID        string     `gorm:"type:varchar(128);not null;uniqueIndex:uq_users_uid" json:"uid"`
	Email      string     `gorm:"type:varchar(255);not null" json:"email"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	PhotoURL   *string    `gorm:"column:photo_url;type:text" json:"photoURL"`
	Department string     `gorm:"type:varchar(255);not null" json:"department"`
	ClassLevel int        `gorm:"not null" json:"classLevel"`
	StudentNo  *string    `gorm:"type:varchar(64)" json:"studentNo"`
	GroupID    *uuid.UUID `gorm:"type:uuid;index:idx_users_group_id" json:"groupId"`
	Group      *Group     `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Role       Role       `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	IsOnline   bool       `gorm:"not null;default:false" json:"isOnline"`
	LastSeen   *time.Time `json:"lastSeen"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the stored role grants the privileged designation.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AssignedGroupID returns the assigned group id as a room id, or "" when unassigned.
func (u *User) AssignedGroupID() string {
	if u == nil || u.GroupID == nil {
		return ""
	}
	return u.GroupID.String()
}
