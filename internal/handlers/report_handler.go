package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/services"
	"github.com/SIGA-2025/attendance-service/internal/utils"
	"github.com/SIGA-2025/attendance-service/internal/validator"
)

type ReportHandler struct {
	BaseHandler
	reports services.ReportService
	exports services.ExportService
}

func NewReportHandler(reports services.ReportService, exports services.ExportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		reports:     reports,
		exports:     exports,
	}
}

// AbsenceReport returns the scoped absence report
// @Summary Absence report
// @Description List absence records for a section within a mandatory date range. Defaults to falta and salida_temprana when no statuses are given.
// @Tags reports
// @Produce json
// @Param section_id query string true "Section ID"
// @Param date_from query string true "Range start (YYYY-MM-DD)"
// @Param date_to query string true "Range end (YYYY-MM-DD)"
// @Param statuses query string false "Comma-separated status filter"
// @Param q query string false "Case-insensitive student name filter"
// @Success 200 {object} services.ReportResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /reports/absences [get]
func (h *ReportHandler) AbsenceReport(c *gin.Context) {
	h.LogRequest(c, "Running absence report")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	req, ok := h.parseReportRequest(c)
	if !ok {
		return
	}

	report, err := h.reports.AbsenceReport(c.Request.Context(), req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportAbsenceReport downloads the absence report as an XLSX file
// @Summary Export absence report
// @Description Export the same scoped absence report as an XLSX spreadsheet.
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param section_id query string true "Section ID"
// @Param date_from query string true "Range start (YYYY-MM-DD)"
// @Param date_to query string true "Range end (YYYY-MM-DD)"
// @Param statuses query string false "Comma-separated status filter"
// @Param q query string false "Case-insensitive student name filter"
// @Success 200 {file} binary "XLSX file"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /reports/absences/export [get]
func (h *ReportHandler) ExportAbsenceReport(c *gin.Context) {
	h.LogRequest(c, "Exporting absence report")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	req, ok := h.parseReportRequest(c)
	if !ok {
		return
	}

	result, err := h.exports.ExportAbsenceReport(c.Request.Context(), req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// parseReportRequest builds a ReportRequest from query parameters. On a parse
// failure it writes the error response and returns false.
func (h *ReportHandler) parseReportRequest(c *gin.Context) (*validator.ReportRequest, bool) {
	req := &validator.ReportRequest{
		SectionID: c.Query("section_id"),
		NameQuery: c.Query("q"),
	}

	dateFrom, err := time.Parse(dateLayout, c.Query("date_from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid date_from parameter",
			Details: "date_from must be in YYYY-MM-DD format",
		})
		return nil, false
	}
	req.DateFrom = dateFrom

	dateTo, err := time.Parse(dateLayout, c.Query("date_to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid date_to parameter",
			Details: "date_to must be in YYYY-MM-DD format",
		})
		return nil, false
	}
	req.DateTo = dateTo

	if statuses := c.Query("statuses"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			req.Statuses = append(req.Statuses, models.AttendanceStatus(strings.TrimSpace(s)))
		}
	}

	return req, true
}
