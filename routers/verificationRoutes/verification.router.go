package verificationRoutes

import (
	verificationController "gsp/controllers/verificationController"
	"gsp/middleware"
	"gsp/models"
	verificationValidator "gsp/validators/verification"

	"github.com/gofiber/fiber/v2"
)

func SetupVerificationRoutes(app *fiber.App) {
	verifyGroup := app.Group("/verification",
		middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleVerificationOfficer, models.RoleAdmin))

	verifyGroup.Get("/pending", verificationController.GetPendingVerifications)
	verifyGroup.Post("/:id/review", verificationValidator.Review(), verificationController.ReviewApplication)
	verifyGroup.Post("/:id/audit", verificationValidator.CompleteAudit(), verificationController.CompleteAudit)
	verifyGroup.Get("/:id/certificate", verificationController.GenerateCertificate)
}
