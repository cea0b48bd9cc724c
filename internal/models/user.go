package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleProfesor UserRole = "profesor"
)

// MostPrivileged collapses a set of role rows into the effective role used for
// gating. Admin outranks profesor; an empty set yields the empty role, which
// callers must treat as deny.
func MostPrivileged(roles []UserRole) UserRole {
	var effective UserRole
	for _, r := range roles {
		switch r {
		case RoleAdmin:
			return RoleAdmin
		case RoleProfesor:
			effective = RoleProfesor
		}
	}
	return effective
}

// Profile is the 1:1 display identity of a principal. The identity provider
// owns authentication; this row only carries name and email for rendering.
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    UserID    `json:"user_id" gorm:"uniqueIndex;not null;size:36"`
	Name      string    `json:"name" gorm:"not null;size:200"`
	Email     string    `json:"email" gorm:"not null;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleAssignment is one role row for a principal. A principal may hold several
// rows; the effective role is resolved with MostPrivileged.
type RoleAssignment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    UserID    `json:"user_id" gorm:"not null;index;size:36"`
	Role      UserRole  `json:"role" gorm:"not null;size:20;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TeacherAssignment grants a teacher responsibility over one section.
// Semantically a set: creating an existing pair is a no-op.
type TeacherAssignment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    UserID    `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_teacher_section"`
	SectionID SectionID `json:"section_id" gorm:"not null;size:36;uniqueIndex:idx_teacher_section;index"`
	CreatedAt time.Time `json:"created_at"`

	Section *Section `json:"section,omitempty" gorm:"foreignKey:SectionID"`
}

func (Profile) TableName() string           { return "profiles" }
func (RoleAssignment) TableName() string    { return "user_roles" }
func (TeacherAssignment) TableName() string { return "teacher_assignments" }
