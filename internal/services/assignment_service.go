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

type assignmentService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.BusinessValidator
	eventPublisher events.EventPublisher
}

func NewAssignmentService(repo repositories.Repository, logger *slog.Logger, v *validator.BusinessValidator, publisher events.EventPublisher) AssignmentService {
	return &assignmentService{
		repo:           repo,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

func (s *assignmentService) Assign(ctx context.Context, req *AssignTeacherRequest, userID models.UserID) error {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if !p.caps.Has(access.CapManageAssignments) {
		return NewPermissionError(userID, "assignment", "create", "insufficient role permissions")
	}

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return NewValidationFailedError(errs)
	}

	sectionID := models.SectionID(req.SectionID)
	exists, err := s.repo.Section().ExistsByID(ctx, nil, sectionID)
	if err != nil {
		return fmt.Errorf("failed to check section: %w", err)
	}
	if !exists {
		return ErrSectionNotFound
	}

	assignment := &models.TeacherAssignment{
		ID:        models.NewID(),
		UserID:    models.UserID(req.UserID),
		SectionID: sectionID,
	}
	if err := s.repo.Assignment().Upsert(ctx, nil, assignment); err != nil {
		return fmt.Errorf("failed to assign teacher: %w", err)
	}

	s.publishChange(ctx, req.UserID, req.SectionID, "assigned", userID)
	s.logger.Info("teacher assigned", "teacher_id", req.UserID, "section_id", sectionID, "by", userID)
	return nil
}

func (s *assignmentService) Remove(ctx context.Context, teacherID models.UserID, sectionID models.SectionID, userID models.UserID) error {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if !p.caps.Has(access.CapManageAssignments) {
		return NewPermissionError(userID, "assignment", "remove", "insufficient role permissions")
	}

	if err := s.repo.Assignment().Remove(ctx, nil, teacherID, sectionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to remove assignment: %w", err)
	}

	s.publishChange(ctx, teacherID.String(), sectionID.String(), "removed", userID)
	s.logger.Info("teacher unassigned", "teacher_id", teacherID, "section_id", sectionID, "by", userID)
	return nil
}

func (s *assignmentService) SectionsForTeacher(ctx context.Context, teacherID models.UserID, userID models.UserID) ([]TeacherSectionSummary, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	// Teachers may list their own assignments; listing another teacher's
	// requires the management capability.
	if teacherID != userID && !p.caps.Has(access.CapManageAssignments) {
		return nil, NewPermissionError(userID, "assignment", "list", "not own assignments")
	}

	assignments, err := s.repo.Assignment().ListFor(ctx, nil, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	summaries := make([]TeacherSectionSummary, 0, len(assignments))
	for _, a := range assignments {
		summary := TeacherSectionSummary{SectionID: a.SectionID}
		if a.Section != nil {
			summary.Letter = a.Section.Letter
			if a.Section.Year != nil {
				summary.YearName = a.Section.Year.Name
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *assignmentService) TeachersForSection(ctx context.Context, sectionID models.SectionID, userID models.UserID) ([]*models.Profile, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !p.caps.Has(access.CapManageAssignments) {
		return nil, NewPermissionError(userID, "assignment", "list_teachers", "insufficient role permissions")
	}

	teacherIDs, err := s.repo.Assignment().TeachersFor(ctx, nil, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list section teachers: %w", err)
	}
	if len(teacherIDs) == 0 {
		return nil, nil
	}

	profiles, err := s.repo.Profile().GetByUserIDs(ctx, nil, teacherIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load teacher profiles: %w", err)
	}
	return profiles, nil
}

func (s *assignmentService) publishChange(ctx context.Context, teacherID, sectionID, action string, changedBy models.UserID) {
	event := events.NewEvent(events.TypeAssignmentChanged, events.AssignmentChangedEvent{
		UserID:    teacherID,
		SectionID: sectionID,
		Action:    action,
		ChangedBy: changedBy.String(),
	})
	if err := s.eventPublisher.PublishEvent(ctx, events.TopicAttendance, event); err != nil {
		s.logger.Error("failed to publish assignment event", "error", err, "action", action)
	}
}
