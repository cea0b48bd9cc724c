package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/SIGA-2025/attendance-service/internal/events"
	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

func newTestRosterService(repo *mockRepository) (RosterService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewRosterService(repo, logger, validator.New(), publisher), publisher
}

func TestRosterService_Years(t *testing.T) {
	ctx := context.Background()
	admin := models.UserID("admin-1")
	teacher := models.UserID("teacher-1")

	repo := newMockRepository()
	repo.seedUser(admin, models.RoleAdmin)
	repo.seedUser(teacher, models.RoleProfesor)

	service, publisher := newTestRosterService(repo)

	t.Run("AdminCreates", func(t *testing.T) {
		year, err := service.CreateYear(ctx, &CreateYearRequest{Name: "1er Año", OrderNumber: 1}, admin)
		if err != nil {
			t.Fatalf("CreateYear failed: %v", err)
		}
		if year.ID == "" || !year.Active {
			t.Errorf("expected active year with id, got %+v", year)
		}
	})

	t.Run("TeacherCannotCreate", func(t *testing.T) {
		_, err := service.CreateYear(ctx, &CreateYearRequest{Name: "2do Año", OrderNumber: 2}, teacher)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("InvalidRequestRejected", func(t *testing.T) {
		_, err := service.CreateYear(ctx, &CreateYearRequest{Name: "", OrderNumber: 0}, admin)
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("DeactivateHidesFromDefaultList", func(t *testing.T) {
		year, err := service.CreateYear(ctx, &CreateYearRequest{Name: "5to Año", OrderNumber: 5}, admin)
		if err != nil {
			t.Fatalf("CreateYear failed: %v", err)
		}

		publisher.ClearEvents()
		if err := service.DeactivateYear(ctx, year.ID, admin); err != nil {
			t.Fatalf("DeactivateYear failed: %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeRosterEntityArchived {
			t.Errorf("expected one %s event, got %+v", events.TypeRosterEntityArchived, published)
		}

		visible, err := service.ListYears(ctx, false, admin)
		if err != nil {
			t.Fatalf("ListYears failed: %v", err)
		}
		for _, y := range visible {
			if y.ID == year.ID {
				t.Error("deactivated year leaked into the default listing")
			}
		}

		all, err := service.ListYears(ctx, true, admin)
		if err != nil {
			t.Fatalf("ListYears failed: %v", err)
		}
		found := false
		for _, y := range all {
			if y.ID == year.ID {
				found = true
			}
		}
		if !found {
			t.Error("deactivated year missing from the administrative listing")
		}
	})
}

func TestRosterService_Students(t *testing.T) {
	ctx := context.Background()
	admin := models.UserID("admin-1")
	teacher := models.UserID("teacher-1")
	outsider := models.UserID("teacher-2")

	repo := newMockRepository()
	repo.seedUser(admin, models.RoleAdmin)
	repo.seedUser(teacher, models.RoleProfesor)
	repo.seedUser(outsider, models.RoleProfesor)
	_, sectionID := repo.seedRoster()
	repo.seedAssignment(teacher, sectionID)

	service, publisher := newTestRosterService(repo)

	t.Run("CreateInUnknownSection", func(t *testing.T) {
		_, err := service.CreateStudent(ctx, &CreateStudentRequest{
			StudentCode: "EST-001",
			Nombres:     "María",
			Apellidos:   "González",
			SectionID:   models.NewSectionID().String(),
		}, admin)
		if !errors.Is(err, ErrSectionNotFound) {
			t.Errorf("expected ErrSectionNotFound, got %v", err)
		}
	})

	t.Run("EnrollAndList", func(t *testing.T) {
		student, err := service.CreateStudent(ctx, &CreateStudentRequest{
			StudentCode: "EST-001",
			Nombres:     "María",
			Apellidos:   "González",
			SectionID:   sectionID.String(),
		}, admin)
		if err != nil {
			t.Fatalf("CreateStudent failed: %v", err)
		}

		students, err := service.ListStudents(ctx, sectionID, false, teacher)
		if err != nil {
			t.Fatalf("ListStudents failed: %v", err)
		}
		if len(students) != 1 || students[0].ID != student.ID {
			t.Errorf("expected the enrolled student, got %+v", students)
		}
	})

	t.Run("UnassignedTeacherCannotList", func(t *testing.T) {
		_, err := service.ListStudents(ctx, sectionID, false, outsider)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("DeactivationIsSoftDelete", func(t *testing.T) {
		student, err := service.CreateStudent(ctx, &CreateStudentRequest{
			StudentCode: "EST-002",
			Nombres:     "Luis",
			Apellidos:   "Pérez",
			SectionID:   sectionID.String(),
		}, admin)
		if err != nil {
			t.Fatalf("CreateStudent failed: %v", err)
		}
		publisher.ClearEvents()
		if err := service.DeactivateStudent(ctx, student.ID, admin); err != nil {
			t.Fatalf("DeactivateStudent failed: %v", err)
		}

		// The row survives: it is still fetchable, just inactive.
		got, err := service.GetStudent(ctx, student.ID, admin)
		if err != nil {
			t.Fatalf("GetStudent failed: %v", err)
		}
		if got.Active {
			t.Error("deactivated student should be inactive")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeRosterEntityArchived {
			t.Errorf("expected one %s event, got %+v", events.TypeRosterEntityArchived, published)
		}
	})
}
