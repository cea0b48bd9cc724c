package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SIGA-2025/attendance-service/internal/cache"
	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
)

// ===== YEARS =====

type YearPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewYearPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.YearRepository {
	return &YearPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (r *YearPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *YearPostgreSQL) Create(ctx context.Context, tx *gorm.DB, year *models.Year) error {
	if err := r.getDB(tx).WithContext(ctx).Create(year).Error; err != nil {
		return fmt.Errorf("failed to create year: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Roster, "years:*")
	return nil
}

func (r *YearPostgreSQL) Update(ctx context.Context, tx *gorm.DB, year *models.Year) error {
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Year{}).
		Where("id = ?", year.ID).
		Updates(map[string]interface{}{
			"name":         year.Name,
			"order_number": year.OrderNumber,
		}).Error; err != nil {
		return fmt.Errorf("failed to update year: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Roster, "years:*")
	return nil
}

func (r *YearPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id models.YearID) (*models.Year, error) {
	var year models.Year
	if err := r.getDB(tx).WithContext(ctx).First(&year, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get year: %w", err)
	}
	return &year, nil
}

func (r *YearPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.RosterFilters) ([]*models.Year, error) {
	cacheKey := fmt.Sprintf("years:list:%t", filters.IncludeInactive)
	var years []*models.Year

	err := r.cacheManager.Roster.CacheOrExecute(ctx, cacheKey, &years, cache.RosterCacheConfig.TTL, func() (interface{}, error) {
		var dbYears []*models.Year
		query := r.helpers.ApplyRosterFilters(r.getDB(tx).WithContext(ctx), filters)
		if err := query.Order("order_number ASC").Find(&dbYears).Error; err != nil {
			return nil, fmt.Errorf("failed to list years: %w", err)
		}
		return dbYears, nil
	})
	if err != nil {
		return nil, err
	}
	return years, nil
}

func (r *YearPostgreSQL) SetActive(ctx context.Context, tx *gorm.DB, id models.YearID, active bool) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Year{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to set year active flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Roster, "years:*")
	return nil
}

func (r *YearPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id models.YearID) (bool, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Year{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check year existence: %w", err)
	}
	return count > 0, nil
}

// ===== SECTIONS =====

type SectionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSectionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SectionRepository {
	return &SectionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (r *SectionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *SectionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, section *models.Section) error {
	if err := r.getDB(tx).WithContext(ctx).Create(section).Error; err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Roster, fmt.Sprintf("sections:year:%s*", section.YearID))
	return nil
}

func (r *SectionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, section *models.Section) error {
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Section{}).
		Where("id = ?", section.ID).
		Updates(map[string]interface{}{
			"letter":  section.Letter,
			"year_id": section.YearID,
		}).Error; err != nil {
		return fmt.Errorf("failed to update section: %w", err)
	}
	_ = r.cacheManager.InvalidateSection(ctx, section.ID.String())
	return nil
}

func (r *SectionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id models.SectionID) (*models.Section, error) {
	var section models.Section
	if err := r.getDB(tx).WithContext(ctx).
		Preload("Year").
		First(&section, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return &section, nil
}

func (r *SectionPostgreSQL) ListByYear(ctx context.Context, tx *gorm.DB, yearID models.YearID, filters repositories.RosterFilters) ([]*models.Section, error) {
	cacheKey := fmt.Sprintf("sections:year:%s:%t", yearID, filters.IncludeInactive)
	var sections []*models.Section

	err := r.cacheManager.Roster.CacheOrExecute(ctx, cacheKey, &sections, cache.RosterCacheConfig.TTL, func() (interface{}, error) {
		var dbSections []*models.Section
		query := r.helpers.ApplyRosterFilters(
			r.getDB(tx).WithContext(ctx).Where("year_id = ?", yearID), filters)
		if err := query.Order("letter ASC").Find(&dbSections).Error; err != nil {
			return nil, fmt.Errorf("failed to list sections: %w", err)
		}
		return dbSections, nil
	})
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *SectionPostgreSQL) SetActive(ctx context.Context, tx *gorm.DB, id models.SectionID, active bool) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Section{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to set section active flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	_ = r.cacheManager.InvalidateSection(ctx, id.String())
	return nil
}

func (r *SectionPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id models.SectionID) (bool, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Section{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check section existence: %w", err)
	}
	return count > 0, nil
}

// ===== STUDENTS =====

type StudentPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewStudentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.StudentRepository {
	return &StudentPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (r *StudentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *StudentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if err := r.getDB(tx).WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Roster, fmt.Sprintf("students:section:%s*", student.SectionID))
	return nil
}

func (r *StudentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", student.ID).
		Updates(map[string]interface{}{
			"student_code": student.StudentCode,
			"nombres":      student.Nombres,
			"apellidos":    student.Apellidos,
			"cedula":       student.Cedula,
			"section_id":   student.SectionID,
		}).Error; err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Roster, "students:*")
	return nil
}

func (r *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id models.StudentID) (*models.Student, error) {
	var student models.Student
	if err := r.getDB(tx).WithContext(ctx).
		Preload("Section").
		First(&student, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (r *StudentPostgreSQL) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Student, error) {
	var student models.Student
	if err := r.getDB(tx).WithContext(ctx).
		First(&student, "student_code = ?", code).Error; err != nil {
		return nil, fmt.Errorf("failed to get student by code: %w", err)
	}
	return &student, nil
}

func (r *StudentPostgreSQL) ListBySection(ctx context.Context, tx *gorm.DB, sectionID models.SectionID, filters repositories.RosterFilters) ([]*models.Student, error) {
	cacheKey := fmt.Sprintf("students:section:%s:%t", sectionID, filters.IncludeInactive)
	var students []*models.Student

	err := r.cacheManager.Roster.CacheOrExecute(ctx, cacheKey, &students, cache.RosterCacheConfig.TTL, func() (interface{}, error) {
		var dbStudents []*models.Student
		query := r.helpers.ApplyRosterFilters(
			r.getDB(tx).WithContext(ctx).Where("section_id = ?", sectionID), filters)
		if err := query.Order("apellidos ASC, nombres ASC").Find(&dbStudents).Error; err != nil {
			return nil, fmt.Errorf("failed to list students: %w", err)
		}
		return dbStudents, nil
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *StudentPostgreSQL) IDsBySections(ctx context.Context, tx *gorm.DB, sectionIDs []models.SectionID) ([]models.StudentID, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	var ids []models.StudentID
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Student{}).
		Where("section_id IN ?", sectionIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve student ids: %w", err)
	}
	return ids, nil
}

func (r *StudentPostgreSQL) SetActive(ctx context.Context, tx *gorm.DB, id models.StudentID, active bool) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to set student active flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Roster, "students:*")
	return nil
}

func (r *StudentPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id models.StudentID) (bool, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return count > 0, nil
}
