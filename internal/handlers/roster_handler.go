package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/services"
	"github.com/SIGA-2025/attendance-service/internal/utils"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

type RosterHandler struct {
	BaseHandler
	service services.RosterService
}

func NewRosterHandler(service services.RosterService, logger utils.Logger) *RosterHandler {
	return &RosterHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== YEAR ENDPOINTS =====

// CreateYear creates a school year
// @Summary Create year
// @Description Create a new school year
// @Tags roster
// @Accept json
// @Produce json
// @Param request body validator.CreateYearRequest true "Year data"
// @Success 201 {object} models.Year
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /years [post]
func (h *RosterHandler) CreateYear(c *gin.Context) {
	h.LogRequest(c, "Creating year")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.CreateYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	year, err := h.service.CreateYear(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, year)
}

// UpdateYear updates a school year
// @Summary Update year
// @Tags roster
// @Accept json
// @Produce json
// @Param id path string true "Year ID"
// @Param request body validator.UpdateYearRequest true "Year data"
// @Success 200 {object} models.Year
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /years/{id} [put]
func (h *RosterHandler) UpdateYear(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating year", "year_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.UpdateYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	year, err := h.service.UpdateYear(c.Request.Context(), models.YearID(id), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, year)
}

// ListYears lists school years
// @Summary List years
// @Tags roster
// @Produce json
// @Param include_inactive query bool false "Include deactivated years (admin only)"
// @Success 200 {array} models.Year
// @Router /years [get]
func (h *RosterHandler) ListYears(c *gin.Context) {
	h.LogRequest(c, "Listing years")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	includeInactive := c.Query("include_inactive") == "true"

	years, err := h.service.ListYears(c.Request.Context(), includeInactive, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, years)
}

// DeactivateYear archives a school year
// @Summary Deactivate year
// @Tags roster
// @Produce json
// @Param id path string true "Year ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /years/{id} [delete]
func (h *RosterHandler) DeactivateYear(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deactivating year", "year_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.service.DeactivateYear(c.Request.Context(), models.YearID(id), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== SECTION ENDPOINTS =====

// CreateSection creates a section within a year
// @Summary Create section
// @Tags roster
// @Accept json
// @Produce json
// @Param request body validator.CreateSectionRequest true "Section data"
// @Success 201 {object} models.Section
// @Failure 404 {object} ErrorResponse "Year not found"
// @Router /sections [post]
func (h *RosterHandler) CreateSection(c *gin.Context) {
	h.LogRequest(c, "Creating section")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	section, err := h.service.CreateSection(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, section)
}

// ListSections lists the sections of a year
// @Summary List sections
// @Tags roster
// @Produce json
// @Param id path string true "Year ID"
// @Param include_inactive query bool false "Include deactivated sections (admin only)"
// @Success 200 {array} models.Section
// @Router /years/{id}/sections [get]
func (h *RosterHandler) ListSections(c *gin.Context) {
	yearID := c.Param("id")
	h.LogRequest(c, "Listing sections", "year_id", yearID)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	includeInactive := c.Query("include_inactive") == "true"

	sections, err := h.service.ListSections(c.Request.Context(), models.YearID(yearID), includeInactive, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sections)
}

// DeactivateSection archives a section
// @Summary Deactivate section
// @Tags roster
// @Produce json
// @Param id path string true "Section ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /sections/{id} [delete]
func (h *RosterHandler) DeactivateSection(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deactivating section", "section_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.service.DeactivateSection(c.Request.Context(), models.SectionID(id), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== STUDENT ENDPOINTS =====

// CreateStudent enrolls a student into a section
// @Summary Enroll student
// @Tags roster
// @Accept json
// @Produce json
// @Param request body validator.CreateStudentRequest true "Student data"
// @Success 201 {object} models.Student
// @Failure 404 {object} ErrorResponse "Section not found"
// @Router /students [post]
func (h *RosterHandler) CreateStudent(c *gin.Context) {
	h.LogRequest(c, "Enrolling student")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	student, err := h.service.CreateStudent(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, student)
}

// UpdateStudent updates a student's data
// @Summary Update student
// @Tags roster
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param request body validator.UpdateStudentRequest true "Student data"
// @Success 200 {object} models.Student
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /students/{id} [put]
func (h *RosterHandler) UpdateStudent(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating student", "student_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	student, err := h.service.UpdateStudent(c.Request.Context(), models.StudentID(id), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// GetStudent fetches a single student
// @Summary Get student
// @Tags roster
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} models.Student
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /students/{id} [get]
func (h *RosterHandler) GetStudent(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting student", "student_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	student, err := h.service.GetStudent(c.Request.Context(), models.StudentID(id), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// ListStudents lists the students of a section
// @Summary List students
// @Tags roster
// @Produce json
// @Param id path string true "Section ID"
// @Param include_inactive query bool false "Include deactivated students (admin only)"
// @Success 200 {array} models.Student
// @Router /sections/{id}/students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) {
	sectionID := c.Param("id")
	h.LogRequest(c, "Listing students", "section_id", sectionID)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	includeInactive := c.Query("include_inactive") == "true"

	students, err := h.service.ListStudents(c.Request.Context(), models.SectionID(sectionID), includeInactive, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

// DeactivateStudent archives a student, keeping their attendance history
// @Summary Deactivate student
// @Tags roster
// @Produce json
// @Param id path string true "Student ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /students/{id} [delete]
func (h *RosterHandler) DeactivateStudent(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deactivating student", "student_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.service.DeactivateStudent(c.Request.Context(), models.StudentID(id), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
