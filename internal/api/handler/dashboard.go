package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/bill_reminder_server/internal/api/middleware"
	"github.com/qs3c/bill_reminder_server/internal/pkg/response"
	"github.com/qs3c/bill_reminder_server/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	stats, err := h.dashboardService.Stats(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, stats)
}

// Categories GET /api/v1/dashboard/categories
func (h *DashboardHandler) Categories(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	breakdown, err := h.dashboardService.CategoryBreakdown(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessList(c, len(breakdown), breakdown)
}
