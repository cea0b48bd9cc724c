package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SIGA-2025/attendance-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

// RosterFilters controls soft-delete visibility for roster lookups. Active
// rows only by default; administrative views set IncludeInactive.
type RosterFilters struct {
	IncludeInactive bool
}

// AttendanceFilters is the single scoped predicate the reporting engine
// composes. SectionID and both date bounds are validated at the service
// layer before a query runs.
type AttendanceFilters struct {
	SectionID models.SectionID           `json:"section_id"`
	DateFrom  time.Time                  `json:"date_from"`
	DateTo    time.Time                  `json:"date_to"`
	Statuses  []models.AttendanceStatus  `json:"statuses"`
	NameQuery string                     `json:"name_query"` // case-insensitive substring over "apellidos nombres"
}

// ===== ROSTER REPOSITORIES =====

type YearRepository interface {
	Create(ctx context.Context, tx *gorm.DB, year *models.Year) error
	Update(ctx context.Context, tx *gorm.DB, year *models.Year) error
	GetByID(ctx context.Context, tx *gorm.DB, id models.YearID) (*models.Year, error)
	List(ctx context.Context, tx *gorm.DB, filters RosterFilters) ([]*models.Year, error)
	SetActive(ctx context.Context, tx *gorm.DB, id models.YearID, active bool) error
	ExistsByID(ctx context.Context, tx *gorm.DB, id models.YearID) (bool, error)
}

type SectionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, section *models.Section) error
	Update(ctx context.Context, tx *gorm.DB, section *models.Section) error
	GetByID(ctx context.Context, tx *gorm.DB, id models.SectionID) (*models.Section, error)
	ListByYear(ctx context.Context, tx *gorm.DB, yearID models.YearID, filters RosterFilters) ([]*models.Section, error)
	SetActive(ctx context.Context, tx *gorm.DB, id models.SectionID, active bool) error
	ExistsByID(ctx context.Context, tx *gorm.DB, id models.SectionID) (bool, error)
}

type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	Update(ctx context.Context, tx *gorm.DB, student *models.Student) error
	GetByID(ctx context.Context, tx *gorm.DB, id models.StudentID) (*models.Student, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Student, error)
	ListBySection(ctx context.Context, tx *gorm.DB, sectionID models.SectionID, filters RosterFilters) ([]*models.Student, error)
	// IDsBySections resolves the scoped student-id set used for teacher
	// dashboards so out-of-scope students never enter a count.
	IDsBySections(ctx context.Context, tx *gorm.DB, sectionIDs []models.SectionID) ([]models.StudentID, error)
	SetActive(ctx context.Context, tx *gorm.DB, id models.StudentID, active bool) error
	ExistsByID(ctx context.Context, tx *gorm.DB, id models.StudentID) (bool, error)
}

// ===== PRINCIPAL REPOSITORIES =====

type RoleRepository interface {
	RolesFor(ctx context.Context, tx *gorm.DB, userID models.UserID) ([]models.UserRole, error)
	CountByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) (int64, error)
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID models.UserID) (*models.Profile, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []models.UserID) ([]*models.Profile, error)
}

type AssignmentRepository interface {
	// Upsert creates the (teacher, section) pair if absent; re-creating an
	// existing pair is a no-op, never an error.
	Upsert(ctx context.Context, tx *gorm.DB, assignment *models.TeacherAssignment) error
	Remove(ctx context.Context, tx *gorm.DB, userID models.UserID, sectionID models.SectionID) error
	SectionsFor(ctx context.Context, tx *gorm.DB, userID models.UserID) ([]models.SectionID, error)
	TeachersFor(ctx context.Context, tx *gorm.DB, sectionID models.SectionID) ([]models.UserID, error)
	ListFor(ctx context.Context, tx *gorm.DB, userID models.UserID) ([]*models.TeacherAssignment, error)
}

// ===== ATTENDANCE LEDGER =====

type AttendanceRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id models.RecordID) (*models.AttendanceRecord, error)
	GetByKey(ctx context.Context, tx *gorm.DB, studentID models.StudentID, date time.Time) (*models.AttendanceRecord, error)
	// Upsert replaces the (student, date) row in place; exactly one stored row
	// per key, last write wins.
	Upsert(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error
	Update(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error
	// Query runs the composed report predicate with students joined, ordered
	// by date descending, then apellidos and nombres ascending.
	Query(ctx context.Context, tx *gorm.DB, filters AttendanceFilters) ([]*models.AttendanceRecord, error)
	ListForSectionDate(ctx context.Context, tx *gorm.DB, sectionID models.SectionID, date time.Time) ([]*models.AttendanceRecord, error)
	ListForStudent(ctx context.Context, tx *gorm.DB, studentID models.StudentID, dateFrom, dateTo time.Time) ([]*models.AttendanceRecord, error)
}
