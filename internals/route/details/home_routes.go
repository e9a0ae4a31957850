package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dashboardController "bookworm_backend/internals/features/home/dashboard/controller"
)

// HomeUserRoutes mounts the role-aware dashboard.
func HomeUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := dashboardController.NewDashboardController(db)

	r.Get("/dashboard", ctrl.Dashboard)
}
