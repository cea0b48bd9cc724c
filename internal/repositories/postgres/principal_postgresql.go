package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SIGA-2025/attendance-service/internal/cache"
	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
)

// ===== ROLES =====

type RolePostgreSQL struct {
	db *gorm.DB
}

func NewRolePostgreSQL(db *gorm.DB) repositories.RoleRepository {
	return &RolePostgreSQL{db: db}
}

func (r *RolePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *RolePostgreSQL) RolesFor(ctx context.Context, tx *gorm.DB, userID models.UserID) ([]models.UserRole, error) {
	var roles []models.UserRole
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.RoleAssignment{}).
		Where("user_id = ?", userID).
		Pluck("role", &roles).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve roles: %w", err)
	}
	return roles, nil
}

func (r *RolePostgreSQL) CountByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.RoleAssignment{}).
		Where("role = ?", role).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count role assignments: %w", err)
	}
	return count, nil
}

// ===== PROFILES =====

type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &ProfilePostgreSQL{db: db}
}

func (r *ProfilePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ProfilePostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID models.UserID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.getDB(tx).WithContext(ctx).
		First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfilePostgreSQL) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []models.UserID) ([]*models.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var profiles []*models.Profile
	if err := r.getDB(tx).WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	return profiles, nil
}

// ===== TEACHER ASSIGNMENTS =====

type AssignmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAssignmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *AssignmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *AssignmentPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, assignment *models.TeacherAssignment) error {
	// Re-assigning an existing pair must stay a no-op, so conflicts on the
	// (user, section) key are swallowed instead of duplicated or rejected.
	if err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "section_id"}},
			DoNothing: true,
		}).
		Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to upsert assignment: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Assignment, fmt.Sprintf("assignments:user:%s*", assignment.UserID))
	return nil
}

func (r *AssignmentPostgreSQL) Remove(ctx context.Context, tx *gorm.DB, userID models.UserID, sectionID models.SectionID) error {
	result := r.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND section_id = ?", userID, sectionID).
		Delete(&models.TeacherAssignment{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Assignment, fmt.Sprintf("assignments:user:%s*", userID))
	return nil
}

func (r *AssignmentPostgreSQL) SectionsFor(ctx context.Context, tx *gorm.DB, userID models.UserID) ([]models.SectionID, error) {
	cacheKey := fmt.Sprintf("assignments:user:%s:sections", userID)
	var sectionIDs []models.SectionID

	err := r.cacheManager.Assignment.CacheOrExecute(ctx, cacheKey, &sectionIDs, cache.AssignmentCacheConfig.TTL, func() (interface{}, error) {
		var ids []models.SectionID
		if err := r.getDB(tx).WithContext(ctx).
			Model(&models.TeacherAssignment{}).
			Where("user_id = ?", userID).
			Pluck("section_id", &ids).Error; err != nil {
			return nil, fmt.Errorf("failed to list assigned sections: %w", err)
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return sectionIDs, nil
}

func (r *AssignmentPostgreSQL) TeachersFor(ctx context.Context, tx *gorm.DB, sectionID models.SectionID) ([]models.UserID, error) {
	var userIDs []models.UserID
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.TeacherAssignment{}).
		Where("section_id = ?", sectionID).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list section teachers: %w", err)
	}
	return userIDs, nil
}

func (r *AssignmentPostgreSQL) ListFor(ctx context.Context, tx *gorm.DB, userID models.UserID) ([]*models.TeacherAssignment, error) {
	var assignments []*models.TeacherAssignment
	if err := r.getDB(tx).WithContext(ctx).
		Preload("Section").
		Preload("Section.Year").
		Where("user_id = ?", userID).
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}
