package handler

import (
	"encoding/json"

	"campus-chat-service/internal/service"
)

type SyncUserRequest struct {
	UID        string  `json:"uid"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	PhotoURL   *string `json:"photoURL"`
	Department string  `json:"department"`
	ClassLevel int     `json:"classLevel"`
	StudentNo  *string `json:"studentNo"`
}

func (r SyncUserRequest) toInput() service.SyncUserInput {
	return service.SyncUserInput{
		UID:        r.UID,
		Email:      r.Email,
		Name:       r.Name,
		PhotoURL:   r.PhotoURL,
		Department: r.Department,
		ClassLevel: r.ClassLevel,
		StudentNo:  r.StudentNo,
	}
}

type CreateGroupRequest struct {
	Department string `json:"department"`
	ClassLevel int    `json:"classLevel"`
}

type SendMessageRequest struct {
	Text    string `json:"text"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
}

type CreateStatusRequest struct {
	UserID  string          `json:"userId"`
	GroupID string          `json:"groupId"`
	Text    *string         `json:"text"`
	Music   json.RawMessage `json:"music"`
}

type BatchCoursesRequest struct {
	Courses     []service.CourseInput `json:"courses"`
	ClearBefore bool                  `json:"clearBefore"`
}

type OnlineUsersResponse struct {
	GroupID string   `json:"groupId"`
	Users   []string `json:"users"`
	Source  string   `json:"source"`
}
