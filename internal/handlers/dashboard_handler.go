package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SIGA-2025/attendance-service/internal/services"
	"github.com/SIGA-2025/attendance-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Overview returns the role-shaped dashboard
// @Summary Get dashboard overview
// @Description Admins get global counts; teachers get counts scoped to their assigned sections.
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.DashboardResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	h.LogRequest(c, "Getting dashboard overview")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
