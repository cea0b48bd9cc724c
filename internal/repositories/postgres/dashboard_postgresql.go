package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SIGA-2025/attendance-service/internal/cache"
	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
)

type DashboardPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDashboardRepository(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DashboardRepository {
	return &DashboardPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *DashboardPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *DashboardPostgreSQL) CountActiveStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := r.cacheManager.Stats.CacheOrExecute(ctx, "stats:students:active", &count, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var dbCount int64
		if err := r.getDB(tx).WithContext(ctx).
			Model(&models.Student{}).
			Where("active = ?", true).
			Count(&dbCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count active students: %w", err)
		}
		return dbCount, nil
	})
	return count, err
}

func (r *DashboardPostgreSQL) CountTeachers(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := r.cacheManager.Stats.CacheOrExecute(ctx, "stats:teachers", &count, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var dbCount int64
		if err := r.getDB(tx).WithContext(ctx).
			Model(&models.RoleAssignment{}).
			Where("role = ?", models.RoleProfesor).
			Count(&dbCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count teachers: %w", err)
		}
		return dbCount, nil
	})
	return count, err
}

func (r *DashboardPostgreSQL) CountAbsencesOn(ctx context.Context, tx *gorm.DB, date time.Time) (int64, error) {
	key := fmt.Sprintf("stats:absences:%s", models.DateKey(models.DateOnly(date)))
	var count int64
	err := r.cacheManager.Stats.CacheOrExecute(ctx, key, &count, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var dbCount int64
		if err := r.getDB(tx).WithContext(ctx).
			Model(&models.AttendanceRecord{}).
			Where("date = ? AND status IN ?", models.DateOnly(date), models.AbsenceStatuses()).
			Count(&dbCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count absences: %w", err)
		}
		return dbCount, nil
	})
	return count, err
}

func (r *DashboardPostgreSQL) CountPendingJustifications(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := r.cacheManager.Stats.CacheOrExecute(ctx, "stats:justifications:pending", &count, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var dbCount int64
		if err := r.getDB(tx).WithContext(ctx).
			Model(&models.AttendanceRecord{}).
			Where("justification_status = ? AND status IN ?", models.JustificationPendiente, models.AbsenceStatuses()).
			Count(&dbCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count pending justifications: %w", err)
		}
		return dbCount, nil
	})
	return count, err
}

func (r *DashboardPostgreSQL) CountRecordsCreatedBy(ctx context.Context, tx *gorm.DB, userID models.UserID, date time.Time) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("created_by = ? AND date = ?", userID, models.DateOnly(date)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count today's records: %w", err)
	}
	return count, nil
}

func (r *DashboardPostgreSQL) CountPendingForStudents(ctx context.Context, tx *gorm.DB, studentIDs []models.StudentID) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("student_id IN ? AND justification_status = ? AND status IN ?", studentIDs, models.JustificationPendiente, models.AbsenceStatuses()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count scoped pending justifications: %w", err)
	}
	return count, nil
}
