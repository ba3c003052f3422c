package domain

import (
	"github.com/google/uuid"
)

type Message struct {
	BaseModel
	Text    string    `gorm:"type:text;not null" json:"text"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_user_id" json:"userId"`
	GroupID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_group_id" json:"groupId"`
	User    *Author   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
