package postgres

import (
	"strings"

	"gorm.io/gorm"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
)

// SharedHelpers contains query fragments shared across repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyRosterFilters applies the soft-delete visibility rule.
func (h *SharedHelpers) ApplyRosterFilters(query *gorm.DB, filters repositories.RosterFilters) *gorm.DB {
	if !filters.IncludeInactive {
		query = query.Where("active = ?", true)
	}
	return query
}

// ApplyAttendanceFilters composes the report predicate: section and date
// bounds first, then status set, then the narrowing name match. The name
// match runs over "apellidos nombres" so it can only shrink the result set.
func (h *SharedHelpers) ApplyAttendanceFilters(query *gorm.DB, filters repositories.AttendanceFilters) *gorm.DB {
	query = query.
		Joins("JOIN students ON students.id = attendance_records.student_id").
		Where("students.section_id = ?", filters.SectionID).
		Where("attendance_records.date >= ? AND attendance_records.date <= ?",
			models.DateOnly(filters.DateFrom), models.DateOnly(filters.DateTo))

	if len(filters.Statuses) > 0 {
		query = query.Where("attendance_records.status IN ?", filters.Statuses)
	}

	if q := strings.TrimSpace(filters.NameQuery); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(students.apellidos || ' ' || students.nombres) LIKE ?", like)
	}

	return query
}
