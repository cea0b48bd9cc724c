package validator

import (
	"time"

	"github.com/SIGA-2025/attendance-service/internal/models"
)

// CreateYearRequest represents the request structure for creating years
type CreateYearRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	OrderNumber int    `json:"order_number" validate:"required,min=1,max=20"`
}

// UpdateYearRequest represents the request structure for updating years
type UpdateYearRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	OrderNumber *int    `json:"order_number" validate:"omitempty,min=1,max=20"`
}

// CreateSectionRequest represents the request structure for creating sections
type CreateSectionRequest struct {
	YearID string `json:"year_id" validate:"required,uuid"`
	Letter string `json:"letter" validate:"required,section_letter"`
}

// CreateStudentRequest represents the request structure for enrolling students
type CreateStudentRequest struct {
	StudentCode string  `json:"student_code" validate:"required,min=1,max=50"`
	Nombres     string  `json:"nombres" validate:"required,min=1,max=150"`
	Apellidos   string  `json:"apellidos" validate:"required,min=1,max=150"`
	Cedula      *string `json:"cedula" validate:"omitempty,max=30"`
	SectionID   string  `json:"section_id" validate:"required,uuid"`
}

// UpdateStudentRequest represents the request structure for updating students
type UpdateStudentRequest struct {
	StudentCode *string `json:"student_code" validate:"omitempty,min=1,max=50"`
	Nombres     *string `json:"nombres" validate:"omitempty,min=1,max=150"`
	Apellidos   *string `json:"apellidos" validate:"omitempty,min=1,max=150"`
	Cedula      *string `json:"cedula" validate:"omitempty,max=30"`
	SectionID   *string `json:"section_id" validate:"omitempty,uuid"`
}

// AssignTeacherRequest represents granting a teacher a section
type AssignTeacherRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required,uuid"`
}

// RecordAttendanceRequest represents writing one ledger row
type RecordAttendanceRequest struct {
	StudentID string                  `json:"student_id" validate:"required,uuid"`
	Date      time.Time               `json:"date" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required,attendance_status"`
}

// SetJustificationRequest represents disposing a pending justification
type SetJustificationRequest struct {
	Resolution models.JustificationStatus `json:"resolution" validate:"required,justification_disposition"`
	Text       *string                    `json:"text" validate:"omitempty,max=1000"`
}

// ReportRequest represents the absence report query. Section and both date
// bounds are mandatory; an unscoped report never runs.
type ReportRequest struct {
	SectionID string                    `json:"section_id" validate:"required,uuid"`
	DateFrom  time.Time                 `json:"date_from" validate:"required"`
	DateTo    time.Time                 `json:"date_to" validate:"required"`
	Statuses  []models.AttendanceStatus `json:"statuses" validate:"omitempty,dive,attendance_status"`
	NameQuery string                    `json:"name_query" validate:"omitempty,max=100"`
}
