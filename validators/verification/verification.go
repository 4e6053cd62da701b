package verificationValidator

import (
	"gsp/middleware"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func Review() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Action      string `json:"action"`
			Remarks     string `json:"remarks"`
			FraudReason string `json:"fraudReason"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		validActions := map[string]bool{"approve": true, "reject": true, "flag_fraud": true}
		if !validActions[reqData.Action] {
			errors["action"] = "Action must be 'approve', 'reject' or 'flag_fraud'!"
		}
		if reqData.Action == "reject" && strings.TrimSpace(reqData.Remarks) == "" {
			errors["remarks"] = "Remarks are required when rejecting!"
		}
		if reqData.Action == "flag_fraud" && strings.TrimSpace(reqData.FraudReason) == "" {
			errors["fraudReason"] = "Fraud reason is required when flagging fraud!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}

func CompleteAudit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Result  string `json:"result"`
			Remarks string `json:"remarks"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Result != "completed" && reqData.Result != "flagged" {
			errors["result"] = "Result must be 'completed' or 'flagged'!"
		}
		if reqData.Result == "flagged" && strings.TrimSpace(reqData.Remarks) == "" {
			errors["remarks"] = "Remarks are required when flagging an audit!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAuditResult", reqData)
		return c.Next()
	}
}
