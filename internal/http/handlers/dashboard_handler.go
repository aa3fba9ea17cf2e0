package handlers

import (
	"github.com/gofiber/fiber/v2"

	"goldengate/internal/services"
)

type DashboardHandler struct {
	Dash *services.DashboardService
	Gate *services.Gate
}

// GET /dashboard
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	return render(c, fiber.Map{
		"summary": h.Dash.Summary(),
		"nav":     services.NavItems(h.Gate.Current()),
	})
}
