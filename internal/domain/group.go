package domain

import (
	"time"
)

// Group is a department + class level cohort. Every ordinary realtime room is a Group id.
type Group struct {
	BaseModel
	Department string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_groups_department_class_level,priority:1" json:"department"`
	ClassLevel int       `gorm:"not null;uniqueIndex:uq_groups_department_class_level,priority:2" json:"classLevel"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Messages []Message `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Statuses []Status  `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Files    []File    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupCounts holds the aggregate counts returned alongside a group.
type GroupCounts struct {
	Members  int64 `json:"members"`
	Messages int64 `json:"messages"`
	Files    int64 `json:"files,omitempty"`
}

// GroupSummary is a group listed with its member and message counts.
type GroupSummary struct {
	Group
	Count GroupCounts `gorm:"-" json:"_count"`
}

// GroupMember is the member view embedded in a group detail response.
type GroupMember struct {
	ID        string  `json:"id"`
	UID       string  `json:"uid"`
	Name      string  `json:"name"`
	PhotoURL  *string `json:"photoURL"`
	StudentNo *string `json:"studentNo"`
}

// GroupDetail is a group with its members and message/file counts.
type GroupDetail struct {
	Group
	Members []GroupMember `json:"members"`
	Count   GroupCounts   `json:"_count"`
}
