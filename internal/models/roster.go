package models

import (
	"time"
)

// Year is an academic grade level (1st through 5th). OrderNumber drives
// display and progression ordering.
type Year struct {
	ID          YearID    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"not null;size:100"`
	OrderNumber int       `json:"order_number" gorm:"not null;index"`
	Active      bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt   time.Time `json:"created_at"`

	Sections []Section `json:"sections,omitempty" gorm:"foreignKey:YearID"`
}

// Section is a lettered subdivision of a Year.
type Section struct {
	ID        SectionID `json:"id" gorm:"primaryKey;size:36"`
	YearID    YearID    `json:"year_id" gorm:"not null;size:36;index"`
	Letter    string    `json:"letter" gorm:"not null;size:5"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`

	Year     *Year     `json:"year,omitempty" gorm:"foreignKey:YearID"`
	Students []Student `json:"students,omitempty" gorm:"foreignKey:SectionID"`
}

// Student belongs to exactly one Section at a time. Deactivation is a
// soft-delete: rows are never removed while attendance records reference them.
type Student struct {
	ID          StudentID `json:"id" gorm:"primaryKey;size:36"`
	StudentCode string    `json:"student_code" gorm:"uniqueIndex;not null;size:50"`
	Nombres     string    `json:"nombres" gorm:"not null;size:150"`
	Apellidos   string    `json:"apellidos" gorm:"not null;size:150"`
	Cedula      *string   `json:"cedula" gorm:"size:30"`
	SectionID   SectionID `json:"section_id" gorm:"not null;size:36;index"`
	Active      bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Section *Section `json:"section,omitempty" gorm:"foreignKey:SectionID"`
}

// FullName is the display form used in reports: "Apellidos, Nombres".
func (s Student) FullName() string {
	return s.Apellidos + ", " + s.Nombres
}

func (Year) TableName() string    { return "years" }
func (Section) TableName() string { return "sections" }
func (Student) TableName() string { return "students" }
