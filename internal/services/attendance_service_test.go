package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SIGA-2025/attendance-service/internal/events"
	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

func newTestAttendanceService(repo *mockRepository) (AttendanceService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewAttendanceService(repo, logger, validator.New(), publisher), publisher
}

func TestAttendanceService_Record(t *testing.T) {
	ctx := context.Background()
	admin := models.UserID("admin-1")
	teacher := models.UserID("teacher-1")
	outsider := models.UserID("teacher-2")

	repo := newMockRepository()
	repo.seedUser(admin, models.RoleAdmin)
	repo.seedUser(teacher, models.RoleProfesor)
	repo.seedUser(outsider, models.RoleProfesor)
	_, sectionID := repo.seedRoster()
	student := repo.seedStudent(sectionID, "EST-001", "María", "González")
	repo.seedAssignment(teacher, sectionID)

	service, publisher := newTestAttendanceService(repo)
	yesterday := time.Now().AddDate(0, 0, -1)

	t.Run("AbsenceOpensJustificationWorkflow", func(t *testing.T) {
		publisher.ClearEvents()

		resp, err := service.Record(ctx, &RecordAttendanceRequest{
			StudentID: student.ID.String(),
			Date:      yesterday,
			Status:    models.StatusFalta,
		}, teacher)
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if resp.Replaced {
			t.Error("first record should not be a replacement")
		}
		if resp.JustificationStatus == nil || *resp.JustificationStatus != models.JustificationPendiente {
			t.Errorf("expected pendiente justification, got %v", resp.JustificationStatus)
		}
		if resp.CreatedBy != teacher {
			t.Errorf("expected created_by %s, got %s", teacher, resp.CreatedBy)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.TypeAttendanceRecorded {
			t.Errorf("expected %s event, got %s", events.TypeAttendanceRecorded, published[0].Type)
		}
	})

	t.Run("ReRecordReplacesRowAndClearsWorkflow", func(t *testing.T) {
		resp, err := service.Record(ctx, &RecordAttendanceRequest{
			StudentID: student.ID.String(),
			Date:      yesterday,
			Status:    models.StatusPresente,
		}, teacher)
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if !resp.Replaced {
			t.Error("expected replacement of the existing row")
		}
		if resp.JustificationStatus != nil {
			t.Errorf("presente must carry no justification, got %v", *resp.JustificationStatus)
		}

		// Still exactly one stored row for the key.
		stored, err := repo.Attendance().GetByKey(ctx, nil, student.ID, yesterday)
		if err != nil {
			t.Fatalf("GetByKey failed: %v", err)
		}
		if stored.Status != models.StatusPresente {
			t.Errorf("expected stored status presente, got %s", stored.Status)
		}
	})

	t.Run("StatusChangeAfterDispositionReopensPendiente", func(t *testing.T) {
		resp, err := service.Record(ctx, &RecordAttendanceRequest{
			StudentID: student.ID.String(),
			Date:      yesterday,
			Status:    models.StatusSalidaTemprana,
		}, admin)
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		text := "permiso médico"
		if _, err := service.SetJustification(ctx, resp.ID, &SetJustificationRequest{
			Resolution: models.JustificationJustificada,
			Text:       &text,
		}, admin); err != nil {
			t.Fatalf("SetJustification failed: %v", err)
		}

		resp, err = service.Record(ctx, &RecordAttendanceRequest{
			StudentID: student.ID.String(),
			Date:      yesterday,
			Status:    models.StatusFalta,
		}, admin)
		if err != nil {
			t.Fatalf("re-record failed: %v", err)
		}
		if resp.JustificationStatus == nil || *resp.JustificationStatus != models.JustificationPendiente {
			t.Errorf("re-record must reopen the workflow as pendiente, got %v", resp.JustificationStatus)
		}
		if resp.JustificationText != nil {
			t.Errorf("re-record must clear justification text, got %q", *resp.JustificationText)
		}
	})

	t.Run("SameStatusReRecordPreservesDisposition", func(t *testing.T) {
		day := time.Now().AddDate(0, 0, -3)
		resp, err := service.Record(ctx, &RecordAttendanceRequest{
			StudentID: student.ID.String(),
			Date:      day,
			Status:    models.StatusFalta,
		}, admin)
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		text := "cita con el odontólogo"
		if _, err := service.SetJustification(ctx, resp.ID, &SetJustificationRequest{
			Resolution: models.JustificationJustificada,
			Text:       &text,
		}, admin); err != nil {
			t.Fatalf("SetJustification failed: %v", err)
		}

		resp, err = service.Record(ctx, &RecordAttendanceRequest{
			StudentID: student.ID.String(),
			Date:      day,
			Status:    models.StatusFalta,
		}, admin)
		if err != nil {
			t.Fatalf("re-record failed: %v", err)
		}
		if resp.JustificationStatus == nil || *resp.JustificationStatus != models.JustificationJustificada {
			t.Errorf("re-marking the same absence must keep the resolved justification, got %v", resp.JustificationStatus)
		}
		if resp.JustificationText == nil || *resp.JustificationText != text {
			t.Errorf("re-marking the same absence must keep the justification text")
		}
	})

	t.Run("UnassignedTeacherDenied", func(t *testing.T) {
		_, err := service.Record(ctx, &RecordAttendanceRequest{
			StudentID: student.ID.String(),
			Date:      yesterday,
			Status:    models.StatusFalta,
		}, outsider)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("FutureDateRejected", func(t *testing.T) {
		_, err := service.Record(ctx, &RecordAttendanceRequest{
			StudentID: student.ID.String(),
			Date:      time.Now().AddDate(0, 0, 2),
			Status:    models.StatusFalta,
		}, teacher)
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("InactiveStudentRejected", func(t *testing.T) {
		inactive := repo.seedStudent(sectionID, "EST-099", "Pedro", "Suárez")
		inactive.Active = false

		_, err := service.Record(ctx, &RecordAttendanceRequest{
			StudentID: inactive.ID.String(),
			Date:      yesterday,
			Status:    models.StatusFalta,
		}, teacher)
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})
}

func TestAttendanceService_SetJustification(t *testing.T) {
	ctx := context.Background()
	admin := models.UserID("admin-1")

	repo := newMockRepository()
	repo.seedUser(admin, models.RoleAdmin)
	_, sectionID := repo.seedRoster()
	student := repo.seedStudent(sectionID, "EST-001", "Luis", "Pérez")

	service, publisher := newTestAttendanceService(repo)
	date := time.Now().AddDate(0, 0, -3)

	record := func(status models.AttendanceStatus) models.RecordID {
		resp, err := service.Record(ctx, &RecordAttendanceRequest{
			StudentID: student.ID.String(),
			Date:      date,
			Status:    status,
		}, admin)
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		return resp.ID
	}

	t.Run("AcceptWithText", func(t *testing.T) {
		publisher.ClearEvents()
		recordID := record(models.StatusFalta)

		text := "cita médica"
		updated, err := service.SetJustification(ctx, recordID, &SetJustificationRequest{
			Resolution: models.JustificationJustificada,
			Text:       &text,
		}, admin)
		if err != nil {
			t.Fatalf("SetJustification failed: %v", err)
		}
		if updated.JustificationStatus == nil || *updated.JustificationStatus != models.JustificationJustificada {
			t.Errorf("expected justificada, got %v", updated.JustificationStatus)
		}
		if updated.JustificationText == nil || *updated.JustificationText != text {
			t.Errorf("expected justification text to be stored")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeJustificationSet {
			t.Errorf("expected one %s event, got %v", events.TypeJustificationSet, published)
		}
	})

	t.Run("TerminalDispositionNeverTransitions", func(t *testing.T) {
		recordID := record(models.StatusFalta)

		if _, err := service.SetJustification(ctx, recordID, &SetJustificationRequest{
			Resolution: models.JustificationNoJustificada,
		}, admin); err != nil {
			t.Fatalf("first disposition failed: %v", err)
		}

		text := "llegó tarde el aviso"
		_, err := service.SetJustification(ctx, recordID, &SetJustificationRequest{
			Resolution: models.JustificationJustificada,
			Text:       &text,
		}, admin)
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed on terminal transition, got %v", err)
		}
		if errors.Is(err, ErrConflict) {
			t.Errorf("terminal transition is a validation failure, not a conflict: %v", err)
		}
	})

	t.Run("AcceptWithoutTextRejected", func(t *testing.T) {
		recordID := record(models.StatusSalidaTemprana)

		_, err := service.SetJustification(ctx, recordID, &SetJustificationRequest{
			Resolution: models.JustificationJustificada,
		}, admin)
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("PresenteHasNoWorkflow", func(t *testing.T) {
		recordID := record(models.StatusPresente)

		_, err := service.SetJustification(ctx, recordID, &SetJustificationRequest{
			Resolution: models.JustificationNoJustificada,
		}, admin)
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("UnknownRecord", func(t *testing.T) {
		_, err := service.SetJustification(ctx, models.NewRecordID(), &SetJustificationRequest{
			Resolution: models.JustificationNoJustificada,
		}, admin)
		if !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestAttendanceService_GetSectionSheet(t *testing.T) {
	ctx := context.Background()
	teacher := models.UserID("teacher-1")

	repo := newMockRepository()
	repo.seedUser(teacher, models.RoleProfesor)
	_, sectionID := repo.seedRoster()
	recorded := repo.seedStudent(sectionID, "EST-001", "Ana", "Blanco")
	unrecorded := repo.seedStudent(sectionID, "EST-002", "Carlos", "Zambrano")
	repo.seedAssignment(teacher, sectionID)

	service, _ := newTestAttendanceService(repo)
	date := time.Now().AddDate(0, 0, -1)

	if _, err := service.Record(ctx, &RecordAttendanceRequest{
		StudentID: recorded.ID.String(),
		Date:      date,
		Status:    models.StatusFalta,
	}, teacher); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	sheet, err := service.GetSectionSheet(ctx, sectionID, date, teacher)
	if err != nil {
		t.Fatalf("GetSectionSheet failed: %v", err)
	}
	if len(sheet.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sheet.Entries))
	}

	byID := make(map[models.StudentID]SectionSheetEntry)
	for _, e := range sheet.Entries {
		byID[e.Student.ID] = e
	}
	if byID[recorded.ID].Record == nil {
		t.Error("recorded student should carry its ledger row")
	}
	if byID[unrecorded.ID].Record != nil {
		t.Error("unrecorded student should have a nil record")
	}
}
