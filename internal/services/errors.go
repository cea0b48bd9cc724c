package services

import (
	"errors"
	"fmt"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

// Sentinel errors used across services. Handlers map these onto HTTP codes.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("conflict") // store-level write races

	ErrYearNotFound       = errors.New("year not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrRecordNotFound     = errors.New("attendance record not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrProfileNotFound    = errors.New("profile not found")
)

// PermissionError carries the who/what/why of a denied operation.
type PermissionError struct {
	UserID   models.UserID
	Resource string
	Action   string
	Reason   string
}

func NewPermissionError(userID models.UserID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

// ValidationFailedError wraps the field-level errors behind the sentinel.
type ValidationFailedError struct {
	Errors validator.ValidationErrors
}

func NewValidationFailedError(errs validator.ValidationErrors) *ValidationFailedError {
	return &ValidationFailedError{Errors: errs}
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Errors.Error())
}

func (e *ValidationFailedError) Is(target error) bool {
	return target == ErrValidationFailed
}
