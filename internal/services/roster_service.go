package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SIGA-2025/attendance-service/internal/access"
	"github.com/SIGA-2025/attendance-service/internal/events"
	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

type rosterService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.BusinessValidator
	eventPublisher events.EventPublisher
}

func NewRosterService(repo repositories.Repository, logger *slog.Logger, v *validator.BusinessValidator, publisher events.EventPublisher) RosterService {
	return &rosterService{
		repo:           repo,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

// ===== YEARS =====

func (s *rosterService) CreateYear(ctx context.Context, req *CreateYearRequest, userID models.UserID) (*models.Year, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !p.caps.Has(access.CapManageRoster) {
		return nil, NewPermissionError(userID, "year", "create", "insufficient role permissions")
	}

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationFailedError(errs)
	}

	year := &models.Year{
		ID:          models.NewYearID(),
		Name:        req.Name,
		OrderNumber: req.OrderNumber,
		Active:      true,
	}
	if err := s.repo.Year().Create(ctx, nil, year); err != nil {
		return nil, fmt.Errorf("failed to create year: %w", err)
	}

	s.logger.Info("year created", "year_id", year.ID, "name", year.Name, "user_id", userID)
	return year, nil
}

func (s *rosterService) UpdateYear(ctx context.Context, id models.YearID, req *UpdateYearRequest, userID models.UserID) (*models.Year, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !p.caps.Has(access.CapManageRoster) {
		return nil, NewPermissionError(userID, "year", "update", "insufficient role permissions")
	}

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationFailedError(errs)
	}

	year, err := s.repo.Year().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrYearNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		year.Name = *req.Name
	}
	if req.OrderNumber != nil {
		year.OrderNumber = *req.OrderNumber
	}

	if err := s.repo.Year().Update(ctx, nil, year); err != nil {
		return nil, fmt.Errorf("failed to update year: %w", err)
	}
	return year, nil
}

func (s *rosterService) ListYears(ctx context.Context, includeInactive bool, userID models.UserID) ([]*models.Year, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !p.caps.Has(access.CapViewAllSections) && !p.caps.Has(access.CapViewOwnSections) {
		return nil, NewPermissionError(userID, "year", "list", "insufficient role permissions")
	}
	// Inactive rows are an administrative view.
	if includeInactive && !p.caps.Has(access.CapManageRoster) {
		includeInactive = false
	}

	years, err := s.repo.Year().List(ctx, nil, repositories.RosterFilters{IncludeInactive: includeInactive})
	if err != nil {
		return nil, fmt.Errorf("failed to list years: %w", err)
	}
	return years, nil
}

func (s *rosterService) DeactivateYear(ctx context.Context, id models.YearID, userID models.UserID) error {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if !p.caps.Has(access.CapManageRoster) {
		return NewPermissionError(userID, "year", "deactivate", "insufficient role permissions")
	}

	if err := s.repo.Year().SetActive(ctx, nil, id, false); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrYearNotFound
		}
		return fmt.Errorf("failed to deactivate year: %w", err)
	}

	s.publishArchived(ctx, "year", id.String(), userID)
	s.logger.Info("year deactivated", "year_id", id, "user_id", userID)
	return nil
}

// ===== SECTIONS =====

func (s *rosterService) CreateSection(ctx context.Context, req *CreateSectionRequest, userID models.UserID) (*models.Section, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !p.caps.Has(access.CapManageRoster) {
		return nil, NewPermissionError(userID, "section", "create", "insufficient role permissions")
	}

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationFailedError(errs)
	}

	yearID := models.YearID(req.YearID)
	exists, err := s.repo.Year().ExistsByID(ctx, nil, yearID)
	if err != nil {
		return nil, fmt.Errorf("failed to check year: %w", err)
	}
	if !exists {
		return nil, ErrYearNotFound
	}

	section := &models.Section{
		ID:     models.NewSectionID(),
		YearID: yearID,
		Letter: req.Letter,
		Active: true,
	}
	if err := s.repo.Section().Create(ctx, nil, section); err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}

	s.logger.Info("section created", "section_id", section.ID, "year_id", yearID, "letter", section.Letter)
	return section, nil
}

func (s *rosterService) ListSections(ctx context.Context, yearID models.YearID, includeInactive bool, userID models.UserID) ([]*models.Section, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !p.caps.Has(access.CapViewAllSections) && !p.caps.Has(access.CapViewOwnSections) {
		return nil, NewPermissionError(userID, "section", "list", "insufficient role permissions")
	}
	if includeInactive && !p.caps.Has(access.CapManageRoster) {
		includeInactive = false
	}

	sections, err := s.repo.Section().ListByYear(ctx, nil, yearID, repositories.RosterFilters{IncludeInactive: includeInactive})
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}

	// Teachers only see the sections they hold.
	if !p.caps.Has(access.CapViewAllSections) {
		assigned, err := s.repo.Assignment().SectionsFor(ctx, nil, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve assigned sections: %w", err)
		}
		assignedSet := make(map[models.SectionID]struct{}, len(assigned))
		for _, id := range assigned {
			assignedSet[id] = struct{}{}
		}
		scoped := sections[:0]
		for _, sec := range sections {
			if _, ok := assignedSet[sec.ID]; ok {
				scoped = append(scoped, sec)
			}
		}
		sections = scoped
	}

	return sections, nil
}

func (s *rosterService) DeactivateSection(ctx context.Context, id models.SectionID, userID models.UserID) error {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if !p.caps.Has(access.CapManageRoster) {
		return NewPermissionError(userID, "section", "deactivate", "insufficient role permissions")
	}

	if err := s.repo.Section().SetActive(ctx, nil, id, false); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to deactivate section: %w", err)
	}

	s.publishArchived(ctx, "section", id.String(), userID)
	s.logger.Info("section deactivated", "section_id", id, "user_id", userID)
	return nil
}

// ===== STUDENTS =====

func (s *rosterService) CreateStudent(ctx context.Context, req *CreateStudentRequest, userID models.UserID) (*models.Student, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !p.caps.Has(access.CapManageRoster) {
		return nil, NewPermissionError(userID, "student", "create", "insufficient role permissions")
	}

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationFailedError(errs)
	}

	sectionID := models.SectionID(req.SectionID)
	exists, err := s.repo.Section().ExistsByID(ctx, nil, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check section: %w", err)
	}
	if !exists {
		return nil, ErrSectionNotFound
	}

	student := &models.Student{
		ID:          models.NewStudentID(),
		StudentCode: req.StudentCode,
		Nombres:     req.Nombres,
		Apellidos:   req.Apellidos,
		Cedula:      req.Cedula,
		SectionID:   sectionID,
		Active:      true,
	}
	if err := s.repo.Student().Create(ctx, nil, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info("student enrolled", "student_id", student.ID, "section_id", sectionID, "code", student.StudentCode)
	return student, nil
}

func (s *rosterService) UpdateStudent(ctx context.Context, id models.StudentID, req *UpdateStudentRequest, userID models.UserID) (*models.Student, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !p.caps.Has(access.CapManageRoster) {
		return nil, NewPermissionError(userID, "student", "update", "insufficient role permissions")
	}

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationFailedError(errs)
	}

	student, err := s.repo.Student().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if req.StudentCode != nil {
		student.StudentCode = *req.StudentCode
	}
	if req.Nombres != nil {
		student.Nombres = *req.Nombres
	}
	if req.Apellidos != nil {
		student.Apellidos = *req.Apellidos
	}
	if req.Cedula != nil {
		student.Cedula = req.Cedula
	}
	if req.SectionID != nil {
		sectionID := models.SectionID(*req.SectionID)
		exists, err := s.repo.Section().ExistsByID(ctx, nil, sectionID)
		if err != nil {
			return nil, fmt.Errorf("failed to check section: %w", err)
		}
		if !exists {
			return nil, ErrSectionNotFound
		}
		student.SectionID = sectionID
	}

	if err := s.repo.Student().Update(ctx, nil, student); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return student, nil
}

func (s *rosterService) GetStudent(ctx context.Context, id models.StudentID, userID models.UserID) (*models.Student, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	student, ok, err := canAccessStudent(ctx, s.repo, p, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewPermissionError(userID, "student", "read", "section not assigned")
	}
	return student, nil
}

func (s *rosterService) ListStudents(ctx context.Context, sectionID models.SectionID, includeInactive bool, userID models.UserID) ([]*models.Student, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	ok, err := canAccessSection(ctx, s.repo, p, sectionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewPermissionError(userID, "student", "list", "section not assigned")
	}
	if includeInactive && !p.caps.Has(access.CapManageRoster) {
		includeInactive = false
	}

	students, err := s.repo.Student().ListBySection(ctx, nil, sectionID, repositories.RosterFilters{IncludeInactive: includeInactive})
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *rosterService) DeactivateStudent(ctx context.Context, id models.StudentID, userID models.UserID) error {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if !p.caps.Has(access.CapManageRoster) {
		return NewPermissionError(userID, "student", "deactivate", "insufficient role permissions")
	}

	if err := s.repo.Student().SetActive(ctx, nil, id, false); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("failed to deactivate student: %w", err)
	}

	s.publishArchived(ctx, "student", id.String(), userID)
	s.logger.Info("student deactivated", "student_id", id, "user_id", userID)
	return nil
}

// ===== EVENTS =====

func (s *rosterService) publishArchived(ctx context.Context, entityType, entityID string, userID models.UserID) {
	event := events.NewEvent(events.TypeRosterEntityArchived, events.RosterEntityArchivedEvent{
		EntityType: entityType,
		EntityID:   entityID,
		ArchivedBy: userID.String(),
	})
	if err := s.eventPublisher.PublishEvent(ctx, events.TopicAttendance, event); err != nil {
		s.logger.Error("failed to publish archive event", "error", err, "entity_type", entityType, "entity_id", entityID)
	}
}
