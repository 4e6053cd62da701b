package applicationRoutes

import (
	applicationController "gsp/controllers/applicationController"
	"gsp/middleware"
	"gsp/models"
	applicationValidator "gsp/validators/application"

	"github.com/gofiber/fiber/v2"
)

func SetupApplicationRoutes(app *fiber.App) {
	appGroup := app.Group("/applications", middleware.JWTMiddleware)

	// Applicant routes
	appGroup.Post("/",
		middleware.RequireRole(models.RoleApplicant),
		applicationValidator.Create(),
		applicationController.CreateApplication)
	appGroup.Put("/:id",
		middleware.RequireRole(models.RoleApplicant),
		applicationValidator.Update(),
		applicationController.UpdateApplication)
	appGroup.Post("/:applicationId/submit",
		middleware.RequireRole(models.RoleApplicant),
		applicationController.SubmitApplication)
	appGroup.Get("/my-application",
		middleware.RequireRole(models.RoleApplicant),
		applicationController.GetMyApplication)

	// Officer and admin routes
	appGroup.Get("/",
		middleware.RequireRole(models.RoleVerificationOfficer, models.RoleAdmin),
		applicationController.GetAllApplications)
	appGroup.Get("/:id",
		middleware.RequireRole(models.RoleVerificationOfficer, models.RoleAdmin),
		applicationController.GetApplicationByID)
}
