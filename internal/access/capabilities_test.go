package access

import (
	"testing"

	"github.com/SIGA-2025/attendance-service/internal/models"
)

func TestCapabilitiesFor(t *testing.T) {
	tests := []struct {
		name    string
		role    models.UserRole
		has     []Capability
		missing []Capability
	}{
		{
			name: "admin",
			role: models.RoleAdmin,
			has:  []Capability{CapManageRoster, CapManageAssignments, CapRecordAttendance, CapSetJustification, CapViewAllSections, CapExportReports},
		},
		{
			name:    "profesor",
			role:    models.RoleProfesor,
			has:     []Capability{CapRecordAttendance, CapSetJustification, CapViewOwnSections, CapExportReports},
			missing: []Capability{CapManageRoster, CapManageAssignments, CapViewAllSections},
		},
		{
			name:    "unknown role denies everything",
			role:    models.UserRole("director"),
			missing: []Capability{CapManageRoster, CapRecordAttendance, CapViewOwnSections},
		},
		{
			name:    "empty role denies everything",
			role:    models.UserRole(""),
			missing: []Capability{CapRecordAttendance, CapSetJustification},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := CapabilitiesFor(tt.role)
			for _, c := range tt.has {
				if !caps.Has(c) {
					t.Errorf("role %s should have %s", tt.role, c)
				}
			}
			for _, c := range tt.missing {
				if caps.Has(c) {
					t.Errorf("role %s should not have %s", tt.role, c)
				}
			}
		})
	}
}

func TestUnrestricted(t *testing.T) {
	if !CapabilitiesFor(models.RoleAdmin).Unrestricted() {
		t.Error("admin scope should be unrestricted")
	}
	if CapabilitiesFor(models.RoleProfesor).Unrestricted() {
		t.Error("profesor scope should be restricted to assignments")
	}
}
