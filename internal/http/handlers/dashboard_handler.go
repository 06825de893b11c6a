package handlers

import (
	"vendorhub/internal/log"
	"vendorhub/internal/repos"
	"vendorhub/internal/services"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
}

// GET /dashboard
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	ov, err := h.Dashboard.Overview(c.UserContext(), userIDFrom(c))
	if err != nil {
		log.Error(c, "dashboard.stats.fail", err, nil)
		return render(c, "dashboard", fiber.Map{"Err": "Could not load your stats right now."})
	}
	return render(c, "dashboard", fiber.Map{
		"Stats":     ov.Stats,
		"Recent":    ov.Recent,
		"Threshold": repos.LowStockThreshold,
	})
}
