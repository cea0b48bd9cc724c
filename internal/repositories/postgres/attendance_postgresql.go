package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SIGA-2025/attendance-service/internal/cache"
	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
)

type AttendancePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAttendancePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AttendanceRepository {
	return &AttendancePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (r *AttendancePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *AttendancePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id models.RecordID) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if err := r.getDB(tx).WithContext(ctx).
		Preload("Student").
		First(&record, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return &record, nil
}

func (r *AttendancePostgreSQL) GetByKey(ctx context.Context, tx *gorm.DB, studentID models.StudentID, date time.Time) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if err := r.getDB(tx).WithContext(ctx).
		Where("student_id = ? AND date = ?", studentID, models.DateOnly(date)).
		First(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to get attendance record by key: %w", err)
	}
	return &record, nil
}

func (r *AttendancePostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error {
	// One stored row per (student, date): a conflicting write replaces the
	// row in place, including clearing any stale justification columns.
	if err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "justification_status", "justification_text", "created_by", "updated_at",
			}),
		}).
		Create(record).Error; err != nil {
		return fmt.Errorf("failed to upsert attendance record: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Stats, "stats:*")
	return nil
}

func (r *AttendancePostgreSQL) Update(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"justification_status": record.JustificationStatus,
			"justification_text":   record.JustificationText,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update attendance record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Stats, "stats:*")
	return nil
}

func (r *AttendancePostgreSQL) Query(ctx context.Context, tx *gorm.DB, filters repositories.AttendanceFilters) ([]*models.AttendanceRecord, error) {
	var records []*models.AttendanceRecord
	query := r.helpers.ApplyAttendanceFilters(
		r.getDB(tx).WithContext(ctx).Model(&models.AttendanceRecord{}), filters)
	if err := query.
		Preload("Student").
		Order("attendance_records.date DESC, students.apellidos ASC, students.nombres ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	return records, nil
}

func (r *AttendancePostgreSQL) ListForStudent(ctx context.Context, tx *gorm.DB, studentID models.StudentID, dateFrom, dateTo time.Time) ([]*models.AttendanceRecord, error) {
	var records []*models.AttendanceRecord
	if err := r.getDB(tx).WithContext(ctx).
		Where("student_id = ? AND date >= ? AND date <= ?",
			studentID, models.DateOnly(dateFrom), models.DateOnly(dateTo)).
		Order("date DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list student attendance: %w", err)
	}
	return records, nil
}

func (r *AttendancePostgreSQL) ListForSectionDate(ctx context.Context, tx *gorm.DB, sectionID models.SectionID, date time.Time) ([]*models.AttendanceRecord, error) {
	var records []*models.AttendanceRecord
	if err := r.getDB(tx).WithContext(ctx).
		Joins("JOIN students ON students.id = attendance_records.student_id").
		Where("students.section_id = ? AND attendance_records.date = ?", sectionID, models.DateOnly(date)).
		Preload("Student").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list section attendance: %w", err)
	}
	return records, nil
}
