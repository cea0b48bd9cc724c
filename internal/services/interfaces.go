package services

import (
	"context"
	"time"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateYearRequest = validator.CreateYearRequest
type UpdateYearRequest = validator.UpdateYearRequest
type CreateSectionRequest = validator.CreateSectionRequest
type CreateStudentRequest = validator.CreateStudentRequest
type UpdateStudentRequest = validator.UpdateStudentRequest
type AssignTeacherRequest = validator.AssignTeacherRequest
type RecordAttendanceRequest = validator.RecordAttendanceRequest
type SetJustificationRequest = validator.SetJustificationRequest
type ReportRequest = validator.ReportRequest

type AttendanceRecordResponse struct {
	*models.AttendanceRecord
	Replaced bool `json:"replaced"`
}

// SectionSheetEntry pairs a roster row with its ledger row for one date.
// Record is nil when nothing has been recorded for the student yet.
type SectionSheetEntry struct {
	Student *models.Student          `json:"student"`
	Record  *models.AttendanceRecord `json:"record,omitempty"`
}

type SectionSheetResponse struct {
	Section *models.Section     `json:"section"`
	Date    string              `json:"date"`
	Entries []SectionSheetEntry `json:"entries"`
}

type StudentHistoryResponse struct {
	Student *models.Student            `json:"student"`
	Records []*models.AttendanceRecord `json:"records"`
}

// ReportRow is one absence in the report, flattened for rendering.
type ReportRow struct {
	RecordID            models.RecordID             `json:"record_id"`
	StudentID           models.StudentID            `json:"student_id"`
	StudentCode         string                      `json:"student_code"`
	StudentName         string                      `json:"student_name"`
	Date                string                      `json:"date"`
	Status              models.AttendanceStatus     `json:"status"`
	JustificationStatus *models.JustificationStatus `json:"justification_status"`
	JustificationText   *string                     `json:"justification_text,omitempty"`
}

type ReportResponse struct {
	Section *models.Section `json:"section"`
	Rows    []ReportRow     `json:"rows"`
	Total   int             `json:"total"`
}

type TeacherSectionSummary struct {
	SectionID models.SectionID `json:"section_id"`
	Letter    string           `json:"letter"`
	YearName  string           `json:"year_name"`
}

type AdminOverviewResponse struct {
	repositories.AdminOverviewData
}

type TeacherOverviewResponse struct {
	repositories.TeacherOverviewData
	Sections []TeacherSectionSummary `json:"sections"`
}

// DashboardResponse is role-shaped: exactly one of Admin or Teacher is set.
type DashboardResponse struct {
	Role    models.UserRole          `json:"role"`
	Admin   *AdminOverviewResponse   `json:"admin,omitempty"`
	Teacher *TeacherOverviewResponse `json:"teacher,omitempty"`
}

type ExportResult struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// ===== SERVICE INTERFACES =====

type RosterService interface {
	// Years
	CreateYear(ctx context.Context, req *CreateYearRequest, userID models.UserID) (*models.Year, error)
	UpdateYear(ctx context.Context, id models.YearID, req *UpdateYearRequest, userID models.UserID) (*models.Year, error)
	ListYears(ctx context.Context, includeInactive bool, userID models.UserID) ([]*models.Year, error)
	DeactivateYear(ctx context.Context, id models.YearID, userID models.UserID) error

	// Sections
	CreateSection(ctx context.Context, req *CreateSectionRequest, userID models.UserID) (*models.Section, error)
	ListSections(ctx context.Context, yearID models.YearID, includeInactive bool, userID models.UserID) ([]*models.Section, error)
	DeactivateSection(ctx context.Context, id models.SectionID, userID models.UserID) error

	// Students
	CreateStudent(ctx context.Context, req *CreateStudentRequest, userID models.UserID) (*models.Student, error)
	UpdateStudent(ctx context.Context, id models.StudentID, req *UpdateStudentRequest, userID models.UserID) (*models.Student, error)
	GetStudent(ctx context.Context, id models.StudentID, userID models.UserID) (*models.Student, error)
	ListStudents(ctx context.Context, sectionID models.SectionID, includeInactive bool, userID models.UserID) ([]*models.Student, error)
	DeactivateStudent(ctx context.Context, id models.StudentID, userID models.UserID) error
}

type AssignmentService interface {
	Assign(ctx context.Context, req *AssignTeacherRequest, userID models.UserID) error
	Remove(ctx context.Context, teacherID models.UserID, sectionID models.SectionID, userID models.UserID) error
	SectionsForTeacher(ctx context.Context, teacherID models.UserID, userID models.UserID) ([]TeacherSectionSummary, error)
	TeachersForSection(ctx context.Context, sectionID models.SectionID, userID models.UserID) ([]*models.Profile, error)
}

type AttendanceService interface {
	// Record upserts the (student, date) ledger row. Re-recording replaces
	// the row and resets any justification workflow.
	Record(ctx context.Context, req *RecordAttendanceRequest, userID models.UserID) (*AttendanceRecordResponse, error)
	// SetJustification disposes a pending justification. Terminal
	// dispositions never transition again.
	SetJustification(ctx context.Context, recordID models.RecordID, req *SetJustificationRequest, userID models.UserID) (*models.AttendanceRecord, error)
	GetSectionSheet(ctx context.Context, sectionID models.SectionID, date time.Time, userID models.UserID) (*SectionSheetResponse, error)
	GetStudentHistory(ctx context.Context, studentID models.StudentID, dateFrom, dateTo time.Time, userID models.UserID) (*StudentHistoryResponse, error)
}

type ReportService interface {
	AbsenceReport(ctx context.Context, req *ReportRequest, userID models.UserID) (*ReportResponse, error)
}

type DashboardService interface {
	// Overview returns the dashboard shaped by the caller's effective role.
	Overview(ctx context.Context, userID models.UserID) (*DashboardResponse, error)
}

type ExportService interface {
	ExportAbsenceReport(ctx context.Context, req *ReportRequest, userID models.UserID) (*ExportResult, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Roster() RosterService
	Assignment() AssignmentService
	Attendance() AttendanceService
	Report() ReportService
	Dashboard() DashboardService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
