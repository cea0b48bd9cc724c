package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

func TestReportService_AbsenceReport(t *testing.T) {
	ctx := context.Background()
	admin := models.UserID("admin-1")
	teacher := models.UserID("teacher-1")
	outsider := models.UserID("teacher-2")

	repo := newMockRepository()
	repo.seedUser(admin, models.RoleAdmin)
	repo.seedUser(teacher, models.RoleProfesor)
	repo.seedUser(outsider, models.RoleProfesor)
	_, sectionID := repo.seedRoster()
	gonzalez := repo.seedStudent(sectionID, "EST-001", "María", "González")
	alvarez := repo.seedStudent(sectionID, "EST-002", "José", "Alvarez")
	repo.seedAssignment(teacher, sectionID)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewReportService(repo, logger, validator.New())
	attendance, _ := newTestAttendanceService(repo)

	day1 := time.Now().AddDate(0, 0, -5)
	day2 := time.Now().AddDate(0, 0, -4)

	seed := []struct {
		student *models.Student
		date    time.Time
		status  models.AttendanceStatus
	}{
		{gonzalez, day1, models.StatusFalta},
		{gonzalez, day2, models.StatusPresente},
		{alvarez, day1, models.StatusSalidaTemprana},
		{alvarez, day2, models.StatusFalta},
	}
	for _, s := range seed {
		if _, err := attendance.Record(ctx, &RecordAttendanceRequest{
			StudentID: s.student.ID.String(),
			Date:      s.date,
			Status:    s.status,
		}, admin); err != nil {
			t.Fatalf("seed record failed: %v", err)
		}
	}

	baseReq := func() *ReportRequest {
		return &ReportRequest{
			SectionID: sectionID.String(),
			DateFrom:  day1,
			DateTo:    day2,
		}
	}

	t.Run("DefaultsToAbsenceStatuses", func(t *testing.T) {
		report, err := service.AbsenceReport(ctx, baseReq(), admin)
		if err != nil {
			t.Fatalf("AbsenceReport failed: %v", err)
		}
		// presente rows never appear in the absence report
		if report.Total != 3 {
			t.Fatalf("expected 3 rows, got %d", report.Total)
		}
		for _, row := range report.Rows {
			if row.Status == models.StatusPresente {
				t.Errorf("presente row leaked into the report: %+v", row)
			}
		}
	})

	t.Run("OrderedDateDescThenName", func(t *testing.T) {
		report, err := service.AbsenceReport(ctx, baseReq(), admin)
		if err != nil {
			t.Fatalf("AbsenceReport failed: %v", err)
		}
		if len(report.Rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(report.Rows))
		}
		if report.Rows[0].Date < report.Rows[2].Date {
			t.Error("rows must be ordered by date descending")
		}
		// day1 has two rows: Alvarez sorts before González
		if report.Rows[1].StudentName != "Alvarez, José" || report.Rows[2].StudentName != "González, María" {
			t.Errorf("same-date rows must sort by apellidos: got %q then %q",
				report.Rows[1].StudentName, report.Rows[2].StudentName)
		}
	})

	t.Run("StatusFilterNarrows", func(t *testing.T) {
		req := baseReq()
		req.Statuses = []models.AttendanceStatus{models.StatusSalidaTemprana}
		report, err := service.AbsenceReport(ctx, req, admin)
		if err != nil {
			t.Fatalf("AbsenceReport failed: %v", err)
		}
		if report.Total != 1 || report.Rows[0].Status != models.StatusSalidaTemprana {
			t.Errorf("expected the single salida_temprana row, got %+v", report.Rows)
		}
	})

	t.Run("NameFilterIsCaseInsensitiveSubstring", func(t *testing.T) {
		req := baseReq()
		req.NameQuery = "gonz"
		report, err := service.AbsenceReport(ctx, req, admin)
		if err != nil {
			t.Fatalf("AbsenceReport failed: %v", err)
		}
		if report.Total != 1 {
			t.Fatalf("expected 1 row for name filter, got %d", report.Total)
		}
		if report.Rows[0].StudentName != "González, María" {
			t.Errorf("expected display name \"González, María\", got %q", report.Rows[0].StudentName)
		}
	})

	t.Run("MissingDatesRejected", func(t *testing.T) {
		req := &ReportRequest{SectionID: sectionID.String()}
		_, err := service.AbsenceReport(ctx, req, admin)
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("InvertedRangeRejected", func(t *testing.T) {
		req := baseReq()
		req.DateFrom, req.DateTo = req.DateTo, req.DateFrom
		_, err := service.AbsenceReport(ctx, req, admin)
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("AssignedTeacherAllowed", func(t *testing.T) {
		if _, err := service.AbsenceReport(ctx, baseReq(), teacher); err != nil {
			t.Errorf("assigned teacher should run the report: %v", err)
		}
	})

	t.Run("UnassignedTeacherDenied", func(t *testing.T) {
		_, err := service.AbsenceReport(ctx, baseReq(), outsider)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}
