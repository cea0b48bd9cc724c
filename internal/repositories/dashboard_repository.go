package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SIGA-2025/attendance-service/internal/models"
)

// DashboardRepository provides the count-only queries behind the role-shaped
// dashboards. Every count is computed store-side; nothing is paged through
// the service layer.
type DashboardRepository interface {
	// Admin overview
	CountActiveStudents(ctx context.Context, tx *gorm.DB) (int64, error)
	CountTeachers(ctx context.Context, tx *gorm.DB) (int64, error)
	CountAbsencesOn(ctx context.Context, tx *gorm.DB, date time.Time) (int64, error)
	CountPendingJustifications(ctx context.Context, tx *gorm.DB) (int64, error)

	// Teacher overview
	CountRecordsCreatedBy(ctx context.Context, tx *gorm.DB, userID models.UserID, date time.Time) (int64, error)
	// CountPendingForStudents counts pending justifications against an
	// explicit student-id set, never a join that could leak out-of-scope rows.
	CountPendingForStudents(ctx context.Context, tx *gorm.DB, studentIDs []models.StudentID) (int64, error)
}

// AdminOverviewData carries the raw admin dashboard counts.
type AdminOverviewData struct {
	TotalStudents         int64 `json:"total_students"`
	TotalTeachers         int64 `json:"total_teachers"`
	TodayAbsences         int64 `json:"today_absences"`
	PendingJustifications int64 `json:"pending_justifications"`
}

// TeacherOverviewData carries the raw teacher dashboard counts.
type TeacherOverviewData struct {
	AssignedSections      int64 `json:"assigned_sections"`
	TodayRecords          int64 `json:"today_records"`
	PendingJustifications int64 `json:"pending_justifications"`
}
