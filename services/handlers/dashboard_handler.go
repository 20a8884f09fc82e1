package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/psikotes-ai/psikotes_api/shared"
)

type DashboardHandler struct {
	dashboardSvc DashboardServiceInterface
}

func NewDashboardHandler(dashboardSvc DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// @Summary User dashboard
// @Description Aggregate accuracy, per category breakdown and recent sessions
// @Tags dashboard
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.DashboardResponse}
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.dashboardSvc.GetDashboard(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", resp)
}
