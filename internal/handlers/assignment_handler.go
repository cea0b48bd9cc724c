package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/services"
	"github.com/SIGA-2025/attendance-service/internal/utils"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

type AssignmentHandler struct {
	BaseHandler
	service services.AssignmentService
}

func NewAssignmentHandler(service services.AssignmentService, logger utils.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Assign grants a teacher access to a section
// @Summary Assign teacher to section
// @Description Grant a teacher access to a section. Re-assigning an existing pair is a no-op.
// @Tags assignments
// @Accept json
// @Produce json
// @Param request body validator.AssignTeacherRequest true "Assignment data"
// @Success 204 "No content"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Section not found"
// @Router /assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	h.LogRequest(c, "Assigning teacher to section")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.AssignTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	if err := h.service.Assign(c.Request.Context(), &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Remove revokes a teacher's access to a section
// @Summary Remove teacher assignment
// @Tags assignments
// @Produce json
// @Param user_id path string true "Teacher user ID"
// @Param section_id path string true "Section ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse "Assignment not found"
// @Router /assignments/{user_id}/{section_id} [delete]
func (h *AssignmentHandler) Remove(c *gin.Context) {
	teacherID := c.Param("user_id")
	sectionID := c.Param("section_id")
	h.LogRequest(c, "Removing teacher assignment", "teacher_id", teacherID, "section_id", sectionID)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.service.Remove(c.Request.Context(), models.UserID(teacherID), models.SectionID(sectionID), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SectionsForTeacher lists the sections assigned to a teacher
// @Summary List teacher sections
// @Description Teachers may list their own sections; admins may list anyone's.
// @Tags assignments
// @Produce json
// @Param user_id path string true "Teacher user ID"
// @Success 200 {array} services.TeacherSectionSummary
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /teachers/{user_id}/sections [get]
func (h *AssignmentHandler) SectionsForTeacher(c *gin.Context) {
	teacherID := c.Param("user_id")
	h.LogRequest(c, "Listing teacher sections", "teacher_id", teacherID)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	sections, err := h.service.SectionsForTeacher(c.Request.Context(), models.UserID(teacherID), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sections)
}

// TeachersForSection lists the teachers assigned to a section
// @Summary List section teachers
// @Tags assignments
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {array} models.Profile
// @Failure 404 {object} ErrorResponse "Section not found"
// @Router /sections/{id}/teachers [get]
func (h *AssignmentHandler) TeachersForSection(c *gin.Context) {
	sectionID := c.Param("id")
	h.LogRequest(c, "Listing section teachers", "section_id", sectionID)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	teachers, err := h.service.TeachersForSection(c.Request.Context(), models.SectionID(sectionID), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, teachers)
}
