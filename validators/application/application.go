package applicationValidator

import (
	"encoding/json"
	"gsp/middleware"
	"gsp/models"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var aadhaarPattern = regexp.MustCompile(`^[0-9]{12}$`)

var validRationCategories = map[string]bool{
	models.RationCardAAY:  true,
	models.RationCardBPL:  true,
	models.RationCardAPL:  true,
	models.RationCardNone: true,
}

// Create validates the multipart payload for a new application. The three
// JSON sections must parse and carry the required facts.
func Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)

		var personal models.PersonalDetails
		if raw := c.FormValue("personalDetails"); raw == "" {
			errors["personalDetails"] = "Personal details are required!"
		} else if err := json.Unmarshal([]byte(raw), &personal); err != nil {
			errors["personalDetails"] = "Personal details must be valid JSON!"
		} else {
			if strings.TrimSpace(personal.Name) == "" {
				errors["personalDetails.name"] = "Name is required!"
			}
			if !aadhaarPattern.MatchString(strings.TrimSpace(personal.AadhaarNumber)) {
				errors["personalDetails.aadhaarNumber"] = "Aadhaar number must be 12 digits!"
			}
		}

		var household models.HouseholdDetails
		if raw := c.FormValue("householdDetails"); raw == "" {
			errors["householdDetails"] = "Household details are required!"
		} else if err := json.Unmarshal([]byte(raw), &household); err != nil {
			errors["householdDetails"] = "Household details must be valid JSON!"
		} else {
			if household.FamilySize < 1 {
				errors["householdDetails.familySize"] = "Family size must be at least 1!"
			}
			if household.RationCardCategory != "" && !validRationCategories[household.RationCardCategory] {
				errors["householdDetails.rationCardCategory"] = "Ration card category must be AAY, BPL, APL or none!"
			}
		}

		var income models.IncomeDetails
		if raw := c.FormValue("incomeDetails"); raw == "" {
			errors["incomeDetails"] = "Income details are required!"
		} else if err := json.Unmarshal([]byte(raw), &income); err != nil {
			errors["incomeDetails"] = "Income details must be valid JSON!"
		} else if income.AnnualIncome <= 0 {
			errors["incomeDetails.annualIncome"] = "Annual income is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

// Update validates a partial edit: any section that is present must parse
// and any value it does carry must be sane.
func Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)

		if raw := c.FormValue("personalDetails"); raw != "" {
			var personal models.PersonalDetails
			if err := json.Unmarshal([]byte(raw), &personal); err != nil {
				errors["personalDetails"] = "Personal details must be valid JSON!"
			}
		}

		if raw := c.FormValue("householdDetails"); raw != "" {
			var household models.HouseholdDetails
			if err := json.Unmarshal([]byte(raw), &household); err != nil {
				errors["householdDetails"] = "Household details must be valid JSON!"
			} else if household.RationCardCategory != "" && !validRationCategories[household.RationCardCategory] {
				errors["householdDetails.rationCardCategory"] = "Ration card category must be AAY, BPL, APL or none!"
			}
		}

		if raw := c.FormValue("incomeDetails"); raw != "" {
			var income models.IncomeDetails
			if err := json.Unmarshal([]byte(raw), &income); err != nil {
				errors["incomeDetails"] = "Income details must be valid JSON!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}
