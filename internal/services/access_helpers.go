package services

import (
	"context"
	"fmt"

	"github.com/SIGA-2025/attendance-service/internal/access"
	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
)

// principal is the resolved caller: effective role plus the capability set
// derived from it. A principal with no role rows resolves to an empty
// capability set, which denies everything.
type principal struct {
	userID models.UserID
	role   models.UserRole
	caps   access.CapabilitySet
}

func resolvePrincipal(ctx context.Context, repo repositories.Repository, userID models.UserID) (*principal, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	roles, err := repo.Role().RolesFor(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller roles: %w", err)
	}

	role := models.MostPrivileged(roles)
	return &principal{
		userID: userID,
		role:   role,
		caps:   access.CapabilitiesFor(role),
	}, nil
}

// canAccessSection reports whether the principal may read or write rows
// scoped to the given section. Admin capability is unrestricted; a teacher
// must hold the section in the assignment registry.
func canAccessSection(ctx context.Context, repo repositories.Repository, p *principal, sectionID models.SectionID) (bool, error) {
	if p.caps.Has(access.CapViewAllSections) {
		return true, nil
	}
	if !p.caps.Has(access.CapViewOwnSections) {
		return false, nil
	}

	sections, err := repo.Assignment().SectionsFor(ctx, nil, p.userID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve assigned sections: %w", err)
	}
	for _, id := range sections {
		if id == sectionID {
			return true, nil
		}
	}
	return false, nil
}

// canAccessStudent resolves the student's section and defers to
// canAccessSection.
func canAccessStudent(ctx context.Context, repo repositories.Repository, p *principal, studentID models.StudentID) (*models.Student, bool, error) {
	student, err := repo.Student().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, false, ErrStudentNotFound
		}
		return nil, false, err
	}

	ok, err := canAccessSection(ctx, repo, p, student.SectionID)
	if err != nil {
		return nil, false, err
	}
	return student, ok, nil
}
