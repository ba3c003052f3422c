package service

import (
	"errors"

	"campus-chat-service/internal/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrStatusNotFound = errors.New("status not found")
	ErrFileNotFound   = errors.New("file not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrGroupExists    = errors.New("group already exists")
	ErrForbidden      = errors.New("forbidden")
	ErrValidation     = errors.New("validation failed")
)

// ValidationError carries the client-facing message of a rejected request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(message string) error {
	return &ValidationError{Message: message}
}

// GroupExistsError is returned by Create when the cohort already has a group.
type GroupExistsError struct {
	Existing *domain.Group
}

func (e *GroupExistsError) Error() string {
	return ErrGroupExists.Error()
}

func (e *GroupExistsError) Is(target error) bool {
	return target == ErrGroupExists
}
