package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttendanceStatus string

const (
	StatusPresente       AttendanceStatus = "presente"
	StatusFalta          AttendanceStatus = "falta"
	StatusSalidaTemprana AttendanceStatus = "salida_temprana"
)

// RequiresJustification reports whether the status opens the justification
// workflow. Presente never carries a justification.
func (s AttendanceStatus) RequiresJustification() bool {
	return s == StatusFalta || s == StatusSalidaTemprana
}

// AbsenceStatuses is the default status set for absence reports.
func AbsenceStatuses() []AttendanceStatus {
	return []AttendanceStatus{StatusFalta, StatusSalidaTemprana}
}

type JustificationStatus string

const (
	JustificationPendiente     JustificationStatus = "pendiente"
	JustificationJustificada   JustificationStatus = "justificada"
	JustificationNoJustificada JustificationStatus = "no_justificada"
)

// Terminal reports whether the disposition closes the workflow. Only
// pendiente admits further transitions.
func (j JustificationStatus) Terminal() bool {
	return j == JustificationJustificada || j == JustificationNoJustificada
}

// AttendanceRecord is the authoritative ledger row: exactly one per
// (student, date), re-recording replaces it.
type AttendanceRecord struct {
	ID        RecordID         `json:"id" gorm:"primaryKey;size:36"`
	StudentID StudentID        `json:"student_id" gorm:"not null;size:36;uniqueIndex:idx_attendance_student_date"`
	Date      datatypes.Date   `json:"date" gorm:"not null;uniqueIndex:idx_attendance_student_date;index"`
	Status    AttendanceStatus `json:"status" gorm:"not null;size:20;index"`

	JustificationStatus *JustificationStatus `json:"justification_status" gorm:"size:20;index"`
	JustificationText   *string              `json:"justification_text" gorm:"type:text"`

	// CreatedBy is the principal that wrote the row; it is an audit field and
	// never changes when the justification is later disposed.
	CreatedBy UserID    `json:"created_by" gorm:"not null;size:36;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (AttendanceRecord) TableName() string { return "attendance_records" }

// DateOnly truncates a timestamp to the calendar day used as the ledger key.
func DateOnly(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// DateKey renders a ledger date in the canonical YYYY-MM-DD form.
func DateKey(d datatypes.Date) string {
	return time.Time(d).Format("2006-01-02")
}
