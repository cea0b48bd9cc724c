package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

// reportTimeout bounds a single report query.
const reportTimeout = 15 * time.Second

type reportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
}

func NewReportService(repo repositories.Repository, logger *slog.Logger, v *validator.BusinessValidator) ReportService {
	return &reportService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *reportService) AbsenceReport(ctx context.Context, req *ReportRequest, userID models.UserID) (*ReportResponse, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.ValidateReportRequest(req); errs.HasErrors() {
		return nil, NewValidationFailedError(errs)
	}

	sectionID := models.SectionID(req.SectionID)
	ok, err := canAccessSection(ctx, s.repo, p, sectionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewPermissionError(userID, "report", "run", "section not assigned")
	}

	section, err := s.repo.Section().GetByID(ctx, nil, sectionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	statuses := req.Statuses
	if len(statuses) == 0 {
		statuses = models.AbsenceStatuses()
	}

	queryCtx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()

	records, err := s.repo.Attendance().Query(queryCtx, nil, repositories.AttendanceFilters{
		SectionID: sectionID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		Statuses:  statuses,
		NameQuery: req.NameQuery,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run absence report: %w", err)
	}

	rows := make([]ReportRow, 0, len(records))
	for _, r := range records {
		row := ReportRow{
			RecordID:            r.ID,
			StudentID:           r.StudentID,
			Date:                models.DateKey(r.Date),
			Status:              r.Status,
			JustificationStatus: r.JustificationStatus,
			JustificationText:   r.JustificationText,
		}
		if r.Student != nil {
			row.StudentCode = r.Student.StudentCode
			row.StudentName = r.Student.FullName()
		}
		rows = append(rows, row)
	}

	s.logger.Info("absence report generated",
		"section_id", sectionID,
		"date_from", req.DateFrom.Format("2006-01-02"),
		"date_to", req.DateTo.Format("2006-01-02"),
		"rows", len(rows),
		"user_id", userID)

	return &ReportResponse{
		Section: section,
		Rows:    rows,
		Total:   len(rows),
	}, nil
}
