package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SIGA-2025/attendance-service/internal/cache"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	year       repositories.YearRepository
	section    repositories.SectionRepository
	student    repositories.StudentRepository
	role       repositories.RoleRepository
	profile    repositories.ProfileRepository
	assignment repositories.AssignmentRepository
	attendance repositories.AttendanceRepository
	dashboard  repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	// Roster repositories use the cache for their hot read paths; the ledger
	// and principal repositories read the store directly.
	repo.year = NewYearPostgreSQL(config.DB, cacheManager)
	repo.section = NewSectionPostgreSQL(config.DB, cacheManager)
	repo.student = NewStudentPostgreSQL(config.DB, cacheManager)
	repo.role = NewRolePostgreSQL(config.DB)
	repo.profile = NewProfilePostgreSQL(config.DB)
	repo.assignment = NewAssignmentPostgreSQL(config.DB, cacheManager)
	repo.attendance = NewAttendancePostgreSQL(config.DB, cacheManager)
	repo.dashboard = NewDashboardRepository(config.DB, cacheManager)

	return repo
}

func (r *PostgreSQLRepository) Year() repositories.YearRepository             { return r.year }
func (r *PostgreSQLRepository) Section() repositories.SectionRepository      { return r.section }
func (r *PostgreSQLRepository) Student() repositories.StudentRepository      { return r.student }
func (r *PostgreSQLRepository) Role() repositories.RoleRepository            { return r.role }
func (r *PostgreSQLRepository) Profile() repositories.ProfileRepository      { return r.profile }
func (r *PostgreSQLRepository) Assignment() repositories.AssignmentRepository {
	return r.assignment
}
func (r *PostgreSQLRepository) Attendance() repositories.AttendanceRepository {
	return r.attendance
}
func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository { return r.dashboard }

// WithTransaction runs fn inside a single database transaction. The callback
// receives a Repository bound to the transaction connection.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := NewPostgreSQLRepository(RepositoryConfig{
			DB:          tx,
			RedisClient: r.redisClient,
		})
		return fn(txRepo)
	})
}

// Ping verifies database connectivity
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// ===== REPOSITORY MANAGER =====

type repositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a manager that owns repository initialization
// and shutdown.
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &repositoryManager{config: config}
}

func (m *repositoryManager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *repositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *repositoryManager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repositories not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *repositoryManager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
