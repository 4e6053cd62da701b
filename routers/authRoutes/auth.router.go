package authRoutes

import (
	authController "gsp/controllers/authController"
	"gsp/middleware"
	authValidator "gsp/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), authController.Signup)
	authGroup.Post("/login", authValidator.Login(), authController.Login)
	authGroup.Post("/send-otp", authValidator.SendOTP(), authController.SendOTP)
	authGroup.Post("/verify-otp", authValidator.VerifyOTP(), authController.VerifyOTP)
	authGroup.Get("/profile", middleware.JWTMiddleware, authController.GetProfile)
	authGroup.Put("/profile", middleware.JWTMiddleware, authController.UpdateProfile)
}
