package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SIGA-2025/attendance-service/internal/access"
	"github.com/SIGA-2025/attendance-service/internal/events"
	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

type attendanceService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.BusinessValidator
	eventPublisher events.EventPublisher
}

func NewAttendanceService(repo repositories.Repository, logger *slog.Logger, v *validator.BusinessValidator, publisher events.EventPublisher) AttendanceService {
	return &attendanceService{
		repo:           repo,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

// ===== LEDGER WRITES =====

func (s *attendanceService) Record(ctx context.Context, req *RecordAttendanceRequest, userID models.UserID) (*AttendanceRecordResponse, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !p.caps.Has(access.CapRecordAttendance) {
		return nil, NewPermissionError(userID, "attendance", "record", "insufficient role permissions")
	}

	if errs := s.validator.ValidateRecordAttendance(req); errs.HasErrors() {
		return nil, NewValidationFailedError(errs)
	}

	student, ok, err := canAccessStudent(ctx, s.repo, p, models.StudentID(req.StudentID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewPermissionError(userID, "attendance", "record", "section not assigned")
	}
	if !student.Active {
		return nil, NewValidationFailedError(validator.ValidationErrors{{
			Field:   "student_id",
			Message: "student is not active",
			Value:   req.StudentID,
			Rule:    "business_logic",
		}})
	}

	var record *models.AttendanceRecord
	var replaced bool
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		existing, err := txRepo.Attendance().GetByKey(ctx, nil, student.ID, req.Date)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to look up existing record: %w", err)
		}
		replaced = existing != nil

		record = &models.AttendanceRecord{
			ID:        models.NewRecordID(),
			StudentID: student.ID,
			Date:      models.DateOnly(req.Date),
			Status:    req.Status,
			CreatedBy: userID,
		}
		if replaced {
			record.ID = existing.ID
		}
		// Absences open a pendiente workflow and presente carries none.
		// Re-marking the same absence keeps a resolved justification;
		// any status change reopens the workflow.
		if req.Status.RequiresJustification() {
			pendiente := models.JustificationPendiente
			record.JustificationStatus = &pendiente
			if replaced && existing.Status == req.Status &&
				existing.JustificationStatus != nil && existing.JustificationStatus.Terminal() {
				record.JustificationStatus = existing.JustificationStatus
				record.JustificationText = existing.JustificationText
			}
		}

		return txRepo.Attendance().Upsert(ctx, nil, record)
	})
	if err != nil {
		return nil, err
	}

	s.publishRecorded(ctx, record, replaced)
	s.logger.Info("attendance recorded",
		"record_id", record.ID,
		"student_id", student.ID,
		"date", models.DateKey(record.Date),
		"status", record.Status,
		"replaced", replaced,
		"user_id", userID)

	return &AttendanceRecordResponse{AttendanceRecord: record, Replaced: replaced}, nil
}

func (s *attendanceService) SetJustification(ctx context.Context, recordID models.RecordID, req *SetJustificationRequest, userID models.UserID) (*models.AttendanceRecord, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !p.caps.Has(access.CapSetJustification) {
		return nil, NewPermissionError(userID, "justification", "set", "insufficient role permissions")
	}

	if errs := s.validator.ValidateSetJustification(req); errs.HasErrors() {
		return nil, NewValidationFailedError(errs)
	}

	record, err := s.repo.Attendance().GetByID(ctx, nil, recordID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	_, ok, err := canAccessStudent(ctx, s.repo, p, record.StudentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewPermissionError(userID, "justification", "set", "section not assigned")
	}

	// Presente rows have no workflow to dispose and resolved dispositions
	// are final; both are validation failures, not conflicts.
	if errs := s.validator.ValidateJustificationTransition(record.JustificationStatus, req.Resolution); errs.HasErrors() {
		return nil, NewValidationFailedError(errs)
	}

	resolution := req.Resolution
	record.JustificationStatus = &resolution
	record.JustificationText = req.Text

	if err := s.repo.Attendance().Update(ctx, nil, record); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to update justification: %w", err)
	}

	s.publishJustificationSet(ctx, record, userID)
	s.logger.Info("justification set",
		"record_id", record.ID,
		"resolution", resolution,
		"user_id", userID)

	return record, nil
}

// ===== READ VIEWS =====

func (s *attendanceService) GetSectionSheet(ctx context.Context, sectionID models.SectionID, date time.Time, userID models.UserID) (*SectionSheetResponse, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	ok, err := canAccessSection(ctx, s.repo, p, sectionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewPermissionError(userID, "attendance", "read_sheet", "section not assigned")
	}

	section, err := s.repo.Section().GetByID(ctx, nil, sectionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	students, err := s.repo.Student().ListBySection(ctx, nil, sectionID, repositories.RosterFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list section students: %w", err)
	}

	records, err := s.repo.Attendance().ListForSectionDate(ctx, nil, sectionID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list section attendance: %w", err)
	}
	byStudent := make(map[models.StudentID]*models.AttendanceRecord, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r
	}

	entries := make([]SectionSheetEntry, 0, len(students))
	for _, st := range students {
		entries = append(entries, SectionSheetEntry{
			Student: st,
			Record:  byStudent[st.ID],
		})
	}

	return &SectionSheetResponse{
		Section: section,
		Date:    models.DateKey(models.DateOnly(date)),
		Entries: entries,
	}, nil
}

func (s *attendanceService) GetStudentHistory(ctx context.Context, studentID models.StudentID, dateFrom, dateTo time.Time, userID models.UserID) (*StudentHistoryResponse, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	student, ok, err := canAccessStudent(ctx, s.repo, p, studentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewPermissionError(userID, "attendance", "read_history", "section not assigned")
	}

	if dateTo.Before(dateFrom) {
		return nil, NewValidationFailedError(validator.ValidationErrors{{
			Field:   "date_to",
			Message: "must not be before date_from",
			Value:   dateTo,
			Rule:    "business_logic",
		}})
	}

	records, err := s.repo.Attendance().ListForStudent(ctx, nil, studentID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to list student attendance: %w", err)
	}

	return &StudentHistoryResponse{Student: student, Records: records}, nil
}

// ===== EVENTS =====

func (s *attendanceService) publishRecorded(ctx context.Context, record *models.AttendanceRecord, replaced bool) {
	event := events.NewEvent(events.TypeAttendanceRecorded, events.AttendanceRecordedEvent{
		RecordID:   record.ID.String(),
		StudentID:  record.StudentID.String(),
		Date:       models.DateKey(record.Date),
		Status:     string(record.Status),
		RecordedBy: record.CreatedBy.String(),
		Replaced:   replaced,
	})
	if err := s.eventPublisher.PublishEvent(ctx, events.TopicAttendance, event); err != nil {
		s.logger.Error("failed to publish attendance event", "error", err, "record_id", record.ID)
	}
}

func (s *attendanceService) publishJustificationSet(ctx context.Context, record *models.AttendanceRecord, userID models.UserID) {
	resolution := ""
	if record.JustificationStatus != nil {
		resolution = string(*record.JustificationStatus)
	}
	event := events.NewEvent(events.TypeJustificationSet, events.JustificationSetEvent{
		RecordID:   record.ID.String(),
		StudentID:  record.StudentID.String(),
		Date:       models.DateKey(record.Date),
		Resolution: resolution,
		ResolvedBy: userID.String(),
	})
	if err := s.eventPublisher.PublishEvent(ctx, events.TopicAttendance, event); err != nil {
		s.logger.Error("failed to publish justification event", "error", err, "record_id", record.ID)
	}
}
