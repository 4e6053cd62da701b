package adminValidator

import (
	"gsp/middleware"
	"gsp/models"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func UpdateConfig() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Key         string      `json:"key"`
			Value       interface{} `json:"value"`
			Description string      `json:"description"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Key) == "" {
			errors["key"] = "Key is required!"
		}
		if reqData.Value == nil {
			errors["value"] = "Value is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedConfig", reqData)
		return c.Next()
	}
}

func TriggerAudit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Month int `json:"month"`
			Year  int `json:"year"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Month < 0 || reqData.Month > 12 {
			errors["month"] = "Month must be between 1 and 12, or 0 for the current month!"
		}
		if reqData.Year != 0 && (reqData.Year < 2000 || reqData.Year > 2100) {
			errors["year"] = "Year is out of range!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAuditTrigger", reqData)
		return c.Next()
	}
}

func CreateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Mobile   string `json:"mobile"`
			Password string `json:"password"`
			Role     string `json:"role"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(strings.TrimSpace(reqData.Name)) < 3 {
			errors["name"] = "Name must be at least 3 characters long!"
		}
		if !emailPattern.MatchString(strings.TrimSpace(reqData.Email)) {
			errors["email"] = "Please enter a valid email address!"
		}
		if len(reqData.Password) < 6 {
			errors["password"] = "Password must be at least 6 characters long!"
		}
		// Admin accounts can never be created through the API
		if reqData.Role != models.RoleApplicant && reqData.Role != models.RoleVerificationOfficer {
			errors["role"] = "Role must be 'applicant' or 'verification_officer'!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateUser", reqData)
		return c.Next()
	}
}

func UpdateUserRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID uint   `json:"userId"`
			Role   string `json:"role"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}
		if reqData.Role != models.RoleApplicant && reqData.Role != models.RoleVerificationOfficer {
			errors["role"] = "Role must be 'applicant' or 'verification_officer'!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRoleUpdate", reqData)
		return c.Next()
	}
}

func UpdateUserStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID   uint `json:"userId"`
			IsActive bool `json:"isActive"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedStatusUpdate", reqData)
		return c.Next()
	}
}
