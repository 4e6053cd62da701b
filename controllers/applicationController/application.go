package applicationController

import (
	"encoding/json"
	"gsp/config"
	"gsp/database"
	"gsp/middleware"
	"gsp/models"
	"gsp/scoring"
	"gsp/utils"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// documentFields maps multipart field names onto the application's document
// references. Only presence of a reference matters downstream, never content.
var documentFields = []string{"aadhaar", "rationCard", "incomeCertificate", "electricityBill", "pan", "addressProof"}

func setDocument(docs *models.Documents, field, path string) {
	switch field {
	case "aadhaar":
		docs.Aadhaar = path
	case "rationCard":
		docs.RationCard = path
	case "incomeCertificate":
		docs.IncomeCertificate = path
	case "electricityBill":
		docs.ElectricityBill = path
	case "pan":
		docs.Pan = path
	case "addressProof":
		docs.AddressProof = path
	}
}

// saveUploadedDocuments stores any uploaded document files and records their
// references on the application.
func saveUploadedDocuments(c *fiber.Ctx, docs *models.Documents) {
	for _, field := range documentFields {
		file, err := c.FormFile(field)
		if err != nil {
			continue
		}
		path, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir)
		if err != nil {
			log.Printf("Error saving uploaded %s document: %v", field, err)
			continue
		}
		setDocument(docs, field, utils.GetFileURL(path))
	}
}

// CreateApplication opens a new draft for the applicant. An applicant may
// hold at most one open application at a time.
func CreateApplication(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var existing models.Application
	err := db.Where("applicant_id = ? AND status IN ?", userID, models.NonTerminalStatuses).First(&existing).Error
	if err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already have a pending application!", fiber.Map{
			"applicationId": existing.ID,
		})
	}
	if err != gorm.ErrRecordNotFound {
		log.Printf("Error checking existing application for user %d: %v", userID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create application!", nil)
	}

	app := models.Application{
		ApplicantID: userID,
		Status:      models.StatusDraft,
	}

	if raw := c.FormValue("personalDetails"); raw != "" {
		json.Unmarshal([]byte(raw), &app.PersonalDetails)
	}
	if raw := c.FormValue("householdDetails"); raw != "" {
		json.Unmarshal([]byte(raw), &app.HouseholdDetails)
	}
	if raw := c.FormValue("incomeDetails"); raw != "" {
		json.Unmarshal([]byte(raw), &app.IncomeDetails)
	}

	saveUploadedDocuments(c, &app.Documents)

	if c.FormValue("consentAccepted") == "true" {
		now := time.Now()
		app.DigitalConsent = models.DigitalConsent{
			Accepted:   true,
			AcceptedAt: &now,
			IPAddress:  c.IP(),
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&app).Error; err != nil {
			return err
		}
		appID := app.ID
		return models.RecordAudit(tx, &appID, userID, models.ActionCreated,
			map[string]interface{}{"status": models.StatusDraft}, c.IP())
	})
	if err != nil {
		log.Printf("Error creating application for user %d: %v", userID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create application!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Application created.", app)
}

// UpdateApplication merges partial edits into an application that is still
// in draft. Submitted applications are immutable to the applicant.
func UpdateApplication(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var app models.Application
	err := db.Where("id = ? AND applicant_id = ? AND status = ?", c.Params("id"), userID, models.StatusDraft).First(&app).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Application not found or cannot be updated!", nil)
	}

	// Unmarshalling into the existing section keeps fields the patch does
	// not mention, so re-sending the same payload is a no-op.
	if raw := c.FormValue("personalDetails"); raw != "" {
		json.Unmarshal([]byte(raw), &app.PersonalDetails)
	}
	if raw := c.FormValue("householdDetails"); raw != "" {
		json.Unmarshal([]byte(raw), &app.HouseholdDetails)
	}
	if raw := c.FormValue("incomeDetails"); raw != "" {
		json.Unmarshal([]byte(raw), &app.IncomeDetails)
	}

	saveUploadedDocuments(c, &app.Documents)

	if c.FormValue("consentAccepted") == "true" {
		now := time.Now()
		app.DigitalConsent = models.DigitalConsent{
			Accepted:   true,
			AcceptedAt: &now,
			IPAddress:  c.IP(),
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&app).Error; err != nil {
			return err
		}
		appID := app.ID
		return models.RecordAudit(tx, &appID, userID, models.ActionModified,
			map[string]interface{}{"status": models.StatusDraft}, c.IP())
	})
	if err != nil {
		log.Printf("Error updating application %d: %v", app.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update application!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Application updated.", app)
}

// SubmitApplication freezes the draft, computes the eligibility score and
// routes the application into verification. Scores are computed exactly once
// here; a suggestion of approved is always downgraded to
// pending_verification because approval requires a human decision.
func SubmitApplication(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var app models.Application
	err := db.Where("id = ? AND applicant_id = ?", c.Params("applicationId"), userID).First(&app).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Application not found!", nil)
	}

	if app.Status != models.StatusDraft {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Application already submitted!", nil)
	}

	if errs := validateRequiredFacts(&app); len(errs) > 0 {
		return middleware.ValidationErrorResponse(c, errs)
	}

	rules := scoring.LoadRules(db)
	thresholds := scoring.LoadThresholds(db)

	breakdown := scoring.CalculateEligibilityScore(&app, rules)
	suggested := scoring.DetermineStatus(breakdown.TotalScore, thresholds)

	// Never auto-approve: a passing score still goes to an officer.
	status := suggested
	if suggested == models.StatusApproved {
		status = models.StatusPendingVerification
	}

	previousVersion := app.Version
	app.ScoringBreakdown = breakdown
	app.EligibilityScore = breakdown.TotalScore
	app.Status = status
	app.Version = previousVersion + 1

	err = db.Transaction(func(tx *gorm.DB) error {
		// Optimistic lock: a concurrent transition surfaces as a Conflict.
		if err := models.SaveWithVersion(tx, &app, previousVersion); err != nil {
			return err
		}
		appID := app.ID
		return models.RecordAudit(tx, &appID, userID, models.ActionSubmitted,
			map[string]interface{}{"score": breakdown.TotalScore, "status": status}, c.IP())
	})
	if err == gorm.ErrRecordNotFound {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Application was modified concurrently. Please retry.", nil)
	}
	if err != nil {
		log.Printf("Error submitting application %d: %v", app.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit application!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Application submitted successfully.", fiber.Map{
		"application":      app,
		"eligibilityScore": breakdown.TotalScore,
		"status":           app.Status,
	})
}

// validateRequiredFacts checks the facts scoring and review depend on.
func validateRequiredFacts(app *models.Application) map[string]string {
	errors := make(map[string]string)
	if strings.TrimSpace(app.PersonalDetails.Name) == "" {
		errors["personalDetails.name"] = "Name is required!"
	}
	if strings.TrimSpace(app.PersonalDetails.AadhaarNumber) == "" {
		errors["personalDetails.aadhaarNumber"] = "Aadhaar number is required!"
	}
	if app.HouseholdDetails.FamilySize < 1 {
		errors["householdDetails.familySize"] = "Family size must be at least 1!"
	}
	if app.IncomeDetails.AnnualIncome <= 0 {
		errors["incomeDetails.annualIncome"] = "Annual income is required!"
	}
	return errors
}

// GetMyApplication returns the applicant's latest application
func GetMyApplication(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var app models.Application
	err := database.Database.Db.Where("applicant_id = ?", userID).Order("created_at desc").First(&app).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No application found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Application fetched successfully.", app)
}

// GetAllApplications lists applications for officers and admins with
// status filter, search and pagination.
func GetAllApplications(c *fiber.Ctx) error {
	db := database.Database.Db

	query := db.Model(&models.Application{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"personal_name ILIKE ? OR personal_aadhaar_number ILIKE ? OR household_ration_card_number ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	sortBy := c.Query("sortBy", "created_at")
	sortOrder := c.Query("sortOrder", "desc")
	allowedSorts := map[string]bool{"created_at": true, "eligibility_score": true, "status": true}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Error counting applications: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch applications!", nil)
	}

	var applications []models.Application
	err := query.Order(sortBy + " " + sortOrder).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&applications).Error
	if err != nil {
		log.Printf("Error fetching applications: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch applications!", nil)
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Applications fetched successfully.", fiber.Map{
		"applications": applications,
		"totalPages":   totalPages,
		"currentPage":  page,
		"total":        total,
	})
}

// GetApplicationByID fetches a single application for review
func GetApplicationByID(c *fiber.Ctx) error {
	var app models.Application
	err := database.Database.Db.Where("id = ?", c.Params("id")).First(&app).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Application not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Application fetched successfully.", app)
}
