package models

import "github.com/google/uuid"

// Opaque identifier types. Each entity gets its own type so a SectionID can
// never be passed where a YearID is expected; conversion is always explicit.
type (
	YearID    string
	SectionID string
	StudentID string
	UserID    string
	RecordID  string
)

// NewID returns a plain uuid string for rows whose ids stay untyped.
func NewID() string { return uuid.NewString() }

func NewYearID() YearID       { return YearID(uuid.NewString()) }
func NewSectionID() SectionID { return SectionID(uuid.NewString()) }
func NewStudentID() StudentID { return StudentID(uuid.NewString()) }
func NewRecordID() RecordID   { return RecordID(uuid.NewString()) }

func (id YearID) String() string    { return string(id) }
func (id SectionID) String() string { return string(id) }
func (id StudentID) String() string { return string(id) }
func (id UserID) String() string    { return string(id) }
func (id RecordID) String() string  { return string(id) }
