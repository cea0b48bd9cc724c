package repositories

import "context"

// Repository aggregates every sub-repository behind one injection point.
type Repository interface {
	// Roster domain (Year -> Section -> Student)
	Year() YearRepository
	Section() SectionRepository
	Student() StudentRepository

	// Principal domain (read-mostly: the identity provider owns authentication,
	// role rows live here)
	Role() RoleRepository
	Profile() ProfileRepository
	Assignment() AssignmentRepository

	// Attendance ledger
	Attendance() AttendanceRepository

	// Dashboard aggregates
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
