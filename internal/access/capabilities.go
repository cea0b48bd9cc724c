// Package access resolves a principal's effective role into the set of
// operations it may perform. Services consult the capability set instead of
// branching on role identity at every call site.
package access

import (
	"github.com/SIGA-2025/attendance-service/internal/models"
)

type Capability string

const (
	CapManageRoster      Capability = "roster:manage"
	CapManageAssignments Capability = "assignments:manage"
	CapRecordAttendance  Capability = "attendance:record"
	CapSetJustification  Capability = "attendance:justify"
	CapViewAllSections   Capability = "sections:view_all"
	CapViewOwnSections   Capability = "sections:view_assigned"
	CapExportReports     Capability = "reports:export"
)

type CapabilitySet map[Capability]struct{}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

var (
	adminCapabilities = newSet(
		CapManageRoster,
		CapManageAssignments,
		CapRecordAttendance,
		CapSetJustification,
		CapViewAllSections,
		CapExportReports,
	)
	profesorCapabilities = newSet(
		CapRecordAttendance,
		CapSetJustification,
		CapViewOwnSections,
		CapExportReports,
	)
)

// CapabilitiesFor maps a resolved role to its permitted operation set. An
// unknown or empty role gets the empty set: deny by default.
func CapabilitiesFor(role models.UserRole) CapabilitySet {
	switch role {
	case models.RoleAdmin:
		return adminCapabilities
	case models.RoleProfesor:
		return profesorCapabilities
	default:
		return CapabilitySet{}
	}
}

// Unrestricted reports whether the role sees every section, or only the ones
// granted through teacher assignments.
func (s CapabilitySet) Unrestricted() bool {
	return s.Has(CapViewAllSections)
}

func newSet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}
