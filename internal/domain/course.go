package domain

import (
	"github.com/google/uuid"
)

// Course is one entry of a user's weekly schedule.
type Course struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_courses_user_id" json:"userId"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Day       string    `gorm:"type:varchar(32);not null" json:"day"`
	StartTime string    `gorm:"type:varchar(16);not null" json:"startTime"`
	EndTime   string    `gorm:"type:varchar(16);not null" json:"endTime"`
	Classroom *string   `gorm:"type:varchar(255)" json:"classroom"`
	Color     *string   `gorm:"type:varchar(32)" json:"color"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}
