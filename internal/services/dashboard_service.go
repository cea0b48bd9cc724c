package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		logger: logger,
	}
}

func (s *dashboardService) Overview(ctx context.Context, userID models.UserID) (*DashboardResponse, error) {
	p, err := resolvePrincipal(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	switch p.role {
	case models.RoleAdmin:
		return s.adminOverview(ctx, p)
	case models.RoleProfesor:
		return s.teacherOverview(ctx, p)
	default:
		return nil, NewPermissionError(userID, "dashboard", "read", "no role assigned")
	}
}

func (s *dashboardService) adminOverview(ctx context.Context, p *principal) (*DashboardResponse, error) {
	dash := s.repo.Dashboard()
	today := time.Now()

	students, err := dash.CountActiveStudents(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	teachers, err := dash.CountTeachers(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count teachers: %w", err)
	}
	absences, err := dash.CountAbsencesOn(ctx, nil, today)
	if err != nil {
		return nil, fmt.Errorf("failed to count absences: %w", err)
	}
	pending, err := dash.CountPendingJustifications(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending justifications: %w", err)
	}

	return &DashboardResponse{
		Role: models.RoleAdmin,
		Admin: &AdminOverviewResponse{
			AdminOverviewData: repositories.AdminOverviewData{
				TotalStudents:         students,
				TotalTeachers:         teachers,
				TodayAbsences:         absences,
				PendingJustifications: pending,
			},
		},
	}, nil
}

func (s *dashboardService) teacherOverview(ctx context.Context, p *principal) (*DashboardResponse, error) {
	dash := s.repo.Dashboard()
	today := time.Now()

	assignments, err := s.repo.Assignment().ListFor(ctx, nil, p.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	sections := make([]TeacherSectionSummary, 0, len(assignments))
	sectionIDs := make([]models.SectionID, 0, len(assignments))
	for _, a := range assignments {
		sectionIDs = append(sectionIDs, a.SectionID)
		summary := TeacherSectionSummary{SectionID: a.SectionID}
		if a.Section != nil {
			summary.Letter = a.Section.Letter
			if a.Section.Year != nil {
				summary.YearName = a.Section.Year.Name
			}
		}
		sections = append(sections, summary)
	}

	todayRecords, err := dash.CountRecordsCreatedBy(ctx, nil, p.userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's records: %w", err)
	}

	// Pending justifications are counted against the scoped student-id set;
	// students outside the teacher's sections never enter the count.
	studentIDs, err := s.repo.Student().IDsBySections(ctx, nil, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scoped students: %w", err)
	}
	pending, err := dash.CountPendingForStudents(ctx, nil, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count scoped pending justifications: %w", err)
	}

	return &DashboardResponse{
		Role: models.RoleProfesor,
		Teacher: &TeacherOverviewResponse{
			TeacherOverviewData: repositories.TeacherOverviewData{
				AssignedSections:      int64(len(assignments)),
				TodayRecords:          todayRecords,
				PendingJustifications: pending,
			},
			Sections: sections,
		},
	}, nil
}
