package adminRoutes

import (
	adminController "gsp/controllers/adminController"
	"gsp/middleware"
	"gsp/models"
	adminValidator "gsp/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin",
		middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleAdmin))

	adminGroup.Get("/dashboard", adminController.GetDashboard)
	adminGroup.Get("/config", adminController.GetConfigs)
	adminGroup.Put("/config", adminValidator.UpdateConfig(), adminController.UpdateConfig)
	adminGroup.Post("/audit/trigger", adminValidator.TriggerAudit(), adminController.TriggerAudit)
	adminGroup.Get("/reports/export", adminController.ExportReport)

	// User management routes
	adminGroup.Post("/users/create", adminValidator.CreateUser(), adminController.CreateUser)
	adminGroup.Get("/users", adminController.ListUsers)
	adminGroup.Put("/users/role", adminValidator.UpdateUserRole(), adminController.UpdateUserRole)
	adminGroup.Put("/users/status", adminValidator.UpdateUserStatus(), adminController.UpdateUserStatus)
}
