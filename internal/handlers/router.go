package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SIGA-2025/attendance-service/internal/config"
	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
	"github.com/SIGA-2025/attendance-service/internal/services"
	"github.com/SIGA-2025/attendance-service/internal/utils"
)

type HandlerManager struct {
	rosterHandler     *RosterHandler
	assignmentHandler *AssignmentHandler
	attendanceHandler *AttendanceHandler
	reportHandler     *ReportHandler
	dashboardHandler  *DashboardHandler
	authMiddleware    *CasdoorAuthMiddleware
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	roleRepo repositories.RoleRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, roleRepo)

	return &HandlerManager{
		rosterHandler:     NewRosterHandler(serviceManager.Roster(), logger),
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), logger),
		attendanceHandler: NewAttendanceHandler(serviceManager.Attendance(), logger),
		reportHandler:     NewReportHandler(serviceManager.Report(), serviceManager.Export(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:    authMiddleware,
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint (unauthenticated)
	router.GET("/health", hm.HealthCheck)

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Year routes
		years := v1.Group("/years")
		{
			// Roster management - Admins only
			years.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.rosterHandler.CreateYear)
			years.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.rosterHandler.UpdateYear)
			years.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.rosterHandler.DeactivateYear)

			// Listing - all authenticated roles
			years.GET("", hm.rosterHandler.ListYears)
			years.GET("/:id/sections", hm.rosterHandler.ListSections)
		}

		// Section routes
		sections := v1.Group("/sections")
		{
			sections.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.rosterHandler.CreateSection)
			sections.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.rosterHandler.DeactivateSection)

			// Section views - scoping is enforced by the services
			sections.GET("/:id/students", hm.rosterHandler.ListStudents)
			sections.GET("/:id/sheet", hm.attendanceHandler.GetSectionSheet)
			sections.GET("/:id/teachers", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.assignmentHandler.TeachersForSection)
		}

		// Student routes
		students := v1.Group("/students")
		{
			students.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.rosterHandler.CreateStudent)
			students.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.rosterHandler.UpdateStudent)
			students.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.rosterHandler.DeactivateStudent)

			students.GET("/:id", hm.rosterHandler.GetStudent)
			students.GET("/:id/history", hm.attendanceHandler.GetStudentHistory)
		}

		// Assignment routes - Admins only
		assignments := v1.Group("/assignments")
		{
			assignments.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.assignmentHandler.Assign)
			assignments.DELETE("/:user_id/:section_id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.assignmentHandler.Remove)
		}

		// Teacher routes
		v1.GET("/teachers/:user_id/sections", hm.assignmentHandler.SectionsForTeacher)

		// Attendance routes
		attendance := v1.Group("/attendance")
		{
			attendance.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleProfesor, models.RoleAdmin), hm.attendanceHandler.Record)
			attendance.PUT("/:id/justification", hm.authMiddleware.RequireRoleMiddleware(models.RoleProfesor, models.RoleAdmin), hm.attendanceHandler.SetJustification)
		}

		// Report routes
		reports := v1.Group("/reports")
		{
			reports.GET("/absences", hm.reportHandler.AbsenceReport)
			reports.GET("/absences/export", hm.reportHandler.ExportAbsenceReport)
		}

		// Dashboard routes
		v1.GET("/dashboard", hm.dashboardHandler.Overview)
	}
}

// HealthCheck reports service and dependency health
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "attendance-service",
	})
}
