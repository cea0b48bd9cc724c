package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/services"
	"github.com/SIGA-2025/attendance-service/internal/utils"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

const dateLayout = "2006-01-02"

type AttendanceHandler struct {
	BaseHandler
	service services.AttendanceService
}

func NewAttendanceHandler(service services.AttendanceService, logger utils.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Record writes one attendance row for a student and date
// @Summary Record attendance
// @Description Record a student's attendance for a date. Recording the same student and date again replaces the previous row and resets its justification workflow.
// @Tags attendance
// @Accept json
// @Produce json
// @Param request body validator.RecordAttendanceRequest true "Attendance data"
// @Success 200 {object} services.AttendanceRecordResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	h.LogRequest(c, "Recording attendance")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	record, err := h.service.Record(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// SetJustification disposes a pending justification
// @Summary Set justification
// @Description Resolve a pending justification to justificada or no_justificada. Resolved justifications are final.
// @Tags attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance record ID"
// @Param request body validator.SetJustificationRequest true "Justification resolution"
// @Success 200 {object} models.AttendanceRecord
// @Failure 400 {object} ErrorResponse "Bad request or justification already resolved"
// @Failure 404 {object} ErrorResponse "Record not found"
// @Router /attendance/{id}/justification [put]
func (h *AttendanceHandler) SetJustification(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Setting justification", "record_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.SetJustificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	record, err := h.service.SetJustification(c.Request.Context(), models.RecordID(id), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetSectionSheet returns a section's daily attendance sheet
// @Summary Get section sheet
// @Description Get every active student of a section paired with their attendance record for a date, if any.
// @Tags attendance
// @Produce json
// @Param id path string true "Section ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} services.SectionSheetResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Section not found"
// @Router /sections/{id}/sheet [get]
func (h *AttendanceHandler) GetSectionSheet(c *gin.Context) {
	sectionID := c.Param("id")

	dateStr := c.Query("date")
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid date parameter",
			Details: "date must be in YYYY-MM-DD format",
		})
		return
	}

	h.LogRequest(c, "Getting section sheet", "section_id", sectionID, "date", dateStr)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	sheet, err := h.service.GetSectionSheet(c.Request.Context(), models.SectionID(sectionID), date, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sheet)
}

// GetStudentHistory returns a student's attendance records in a date range
// @Summary Get student history
// @Tags attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param date_from query string true "Range start (YYYY-MM-DD)"
// @Param date_to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} services.StudentHistoryResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /students/{id}/history [get]
func (h *AttendanceHandler) GetStudentHistory(c *gin.Context) {
	studentID := c.Param("id")

	dateFrom, err := time.Parse(dateLayout, c.Query("date_from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid date_from parameter",
			Details: "date_from must be in YYYY-MM-DD format",
		})
		return
	}

	dateTo, err := time.Parse(dateLayout, c.Query("date_to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid date_to parameter",
			Details: "date_to must be in YYYY-MM-DD format",
		})
		return
	}

	h.LogRequest(c, "Getting student history", "student_id", studentID)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	history, err := h.service.GetStudentHistory(c.Request.Context(), models.StudentID(studentID), dateFrom, dateTo, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
