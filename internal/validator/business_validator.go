package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/SIGA-2025/attendance-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// New creates a new business validator
func New() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateRecordAttendance validates a ledger write request
func (bv *BusinessValidator) ValidateRecordAttendance(req *RecordAttendanceRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	// Attendance is recorded for days that happened, never ahead of time.
	if !req.Date.IsZero() {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		requested := req.Date.UTC().Truncate(24 * time.Hour)
		if requested.After(today) {
			errors = append(errors, ValidationError{
				Field:   "date",
				Message: "cannot record attendance for a future date",
				Value:   req.Date,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateSetJustification validates a justification disposition request
func (bv *BusinessValidator) ValidateSetJustification(req *SetJustificationRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	// Accepting a justification requires the justification itself.
	if req.Resolution == models.JustificationJustificada {
		if req.Text == nil || strings.TrimSpace(*req.Text) == "" {
			errors = append(errors, ValidationError{
				Field:   "text",
				Message: "justification text is required when accepting",
				Value:   req.Text,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateReportRequest validates the absence report filters
func (bv *BusinessValidator) ValidateReportRequest(req *ReportRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if !req.DateFrom.IsZero() && !req.DateTo.IsZero() && req.DateTo.Before(req.DateFrom) {
		errors = append(errors, ValidationError{
			Field:   "date_to",
			Message: "must not be before date_from",
			Value:   req.DateTo,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateJustificationTransition validates moving a record's justification
// from its current disposition to a new one. Only pendiente admits
// transitions; accepted and rejected are terminal.
func (bv *BusinessValidator) ValidateJustificationTransition(current *models.JustificationStatus, next models.JustificationStatus) ValidationErrors {
	var errors ValidationErrors

	if current == nil {
		errors = append(errors, ValidationError{
			Field:   "justification_status",
			Message: "record has no justification workflow (status is presente)",
			Rule:    "status_transition",
		})
		return errors
	}

	if current.Terminal() {
		errors = append(errors, ValidationError{
			Field:   "justification_status",
			Message: fmt.Sprintf("cannot transition from %s to %s", *current, next),
			Value:   next,
			Rule:    "status_transition",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Attendance status validation
	bv.validate.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		status := models.AttendanceStatus(fl.Field().String())
		switch status {
		case models.StatusPresente, models.StatusFalta, models.StatusSalidaTemprana:
			return true
		}
		return false
	})

	// Justification disposition validation (pendiente is never requested,
	// only entered automatically)
	bv.validate.RegisterValidation("justification_disposition", func(fl validator.FieldLevel) bool {
		resolution := models.JustificationStatus(fl.Field().String())
		switch resolution {
		case models.JustificationJustificada, models.JustificationNoJustificada:
			return true
		}
		return false
	})

	// Section letter validation (single uppercase letter)
	bv.validate.RegisterValidation("section_letter", func(fl validator.FieldLevel) bool {
		letter := fl.Field().String()
		return len(letter) == 1 && letter[0] >= 'A' && letter[0] <= 'Z'
	})
}
