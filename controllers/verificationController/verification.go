package verificationController

import (
	"fmt"
	"gsp/config"
	"gsp/database"
	"gsp/middleware"
	"gsp/models"
	"gsp/utils"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetPendingVerifications lists the review queue, oldest first
func GetPendingVerifications(c *fiber.Ctx) error {
	var applications []models.Application
	err := database.Database.Db.
		Where("status IN ?", []string{models.StatusUnderReview, models.StatusPendingVerification}).
		Order("created_at asc").
		Find(&applications).Error
	if err != nil {
		log.Printf("Error fetching pending verifications: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch pending verifications!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending verifications fetched successfully.", applications)
}

// ReviewApplication records an officer decision: approve, reject or
// flag_fraud. Approval is the only path to the approved status anywhere in
// the system, so it always marks a manual override. The status change and
// its trail entry commit together, guarded by the application version.
func ReviewApplication(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedReview").(*struct {
		Action      string `json:"action"`
		Remarks     string `json:"remarks"`
		FraudReason string `json:"fraudReason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var app models.Application
	if err := db.Where("id = ?", c.Params("id")).First(&app).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Application not found!", nil)
	}

	if app.IsTerminal() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Application has already been decided!", nil)
	}

	now := time.Now()
	previousVersion := app.Version
	var action string
	var details map[string]interface{}
	var message string

	switch reqData.Action {
	case "approve":
		app.Status = models.StatusApproved
		app.Verification.VerifiedByID = &reviewerID
		app.Verification.VerifiedAt = &now
		app.Verification.Remarks = reqData.Remarks
		app.Verification.IsManualOverride = true
		app.CertificateNumber = generateCertificateNumber(app.ID)
		action = models.ActionApproved
		details = map[string]interface{}{"remarks": reqData.Remarks, "manualOverride": true}
		message = "Application approved."

	case "reject":
		app.Status = models.StatusRejected
		app.Verification.VerifiedByID = &reviewerID
		app.Verification.VerifiedAt = &now
		app.Verification.Remarks = reqData.Remarks
		app.RejectionReason = reqData.Remarks
		action = models.ActionRejected
		details = map[string]interface{}{"reason": reqData.Remarks}
		message = "Application rejected."

	case "flag_fraud":
		// Re-flagging overwrites the previous reason.
		app.Verification.IsFraud = true
		app.Verification.FraudReason = reqData.FraudReason
		app.Status = models.StatusRejected
		app.RejectionReason = fmt.Sprintf("Fraud detected: %s", reqData.FraudReason)
		action = models.ActionFraudMarked
		details = map[string]interface{}{"reason": reqData.FraudReason}
		message = "Application flagged as fraud."

	default:
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid action!", nil)
	}

	app.Version = previousVersion + 1

	err := db.Transaction(func(tx *gorm.DB) error {
		// Optimistic lock: only one reviewer decision counts per version.
		if err := models.SaveWithVersion(tx, &app, previousVersion); err != nil {
			return err
		}
		appID := app.ID
		return models.RecordAudit(tx, &appID, reviewerID, action, details, c.IP())
	})
	if err == gorm.ErrRecordNotFound {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Another reviewer has already acted on this application!", nil)
	}
	if err != nil {
		log.Printf("Error reviewing application %d: %v", app.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to review application!", nil)
	}

	notifyApplicant(db, &app)

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, app)
}

// generateCertificateNumber builds a unique certificate reference from the
// issue instant and the record id suffix.
func generateCertificateNumber(appID uint) string {
	return fmt.Sprintf("GAS-%d-%06d", time.Now().UnixMilli(), appID%1000000)
}

// notifyApplicant sends the decision email, best effort.
func notifyApplicant(db *gorm.DB, app *models.Application) {
	var applicant models.User
	if err := db.Where("id = ?", app.ApplicantID).First(&applicant).Error; err != nil {
		log.Printf("Error fetching applicant %d for notification: %v", app.ApplicantID, err)
		return
	}

	switch app.Status {
	case models.StatusApproved:
		utils.SendApplicationApprovedEmail(applicant.Email, applicant.Name, app.CertificateNumber)
	case models.StatusRejected:
		utils.SendApplicationRejectedEmail(applicant.Email, applicant.Name, app.RejectionReason)
	}
}

// CompleteAudit closes out a compliance audit on a selected application.
// A flagged result also flips the application status to audit_flagged.
func CompleteAudit(c *fiber.Ctx) error {
	officerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAuditResult").(*struct {
		Result  string `json:"result"`
		Remarks string `json:"remarks"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var app models.Application
	if err := db.Where("id = ?", c.Params("id")).First(&app).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Application not found!", nil)
	}

	if app.AuditStatus != models.AuditSelected {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Application is not selected for audit!", nil)
	}

	now := time.Now()
	previousVersion := app.Version
	app.AuditDate = &now
	app.AuditOfficerID = &officerID
	if reqData.Result == "flagged" {
		app.AuditStatus = models.AuditFlagged
		app.Status = models.StatusAuditFlagged
	} else {
		app.AuditStatus = models.AuditCompleted
	}
	app.Version = previousVersion + 1

	err := db.Transaction(func(tx *gorm.DB) error {
		// Optimistic lock: two officers cannot both close the same audit.
		if err := models.SaveWithVersion(tx, &app, previousVersion); err != nil {
			return err
		}
		appID := app.ID
		return models.RecordAudit(tx, &appID, officerID, models.ActionAuditCompleted,
			map[string]interface{}{"result": reqData.Result, "remarks": reqData.Remarks}, c.IP())
	})
	if err == gorm.ErrRecordNotFound {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Another officer has already recorded this audit!", nil)
	}
	if err != nil {
		log.Printf("Error completing audit for application %d: %v", app.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete audit!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Audit recorded.", app)
}

// GenerateCertificate renders the eligibility certificate PDF for an
// approved application and streams it to the caller.
func GenerateCertificate(c *fiber.Ctx) error {
	db := database.Database.Db

	var app models.Application
	if err := db.Where("id = ?", c.Params("id")).First(&app).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Application not found!", nil)
	}

	if app.Status != models.StatusApproved {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Application not approved!", nil)
	}

	var subsidyAmount int
	if err := models.GetConfigValue(db, models.ConfigSubsidyAmount, &subsidyAmount); err != nil {
		subsidyAmount = 200
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "GAS SUBSIDY ELIGIBILITY CERTIFICATE", "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Certificate Number: %s", app.CertificateNumber), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Date: %s", time.Now().Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(0, 8, "This is to certify that:", "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(0, 8, fmt.Sprintf("Name: %s", app.PersonalDetails.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Aadhaar: %s", app.PersonalDetails.AadhaarNumber), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Address: %s, %s", app.HouseholdDetails.Address.Street, app.HouseholdDetails.Address.City), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.MultiCell(0, 8, "has been found eligible for subsidized domestic gas cylinders under the Government Gas Supply Program.", "", "L", false)
	pdf.Ln(4)
	pdf.CellFormat(0, 8, fmt.Sprintf("Eligibility Score: %d", app.EligibilityScore), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Subsidy Amount: Rs. %d per cylinder", subsidyAmount), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(0, 8, "This certificate is valid for one year from the date of issue.", "", 1, "L", false, 0, "")

	filename := fmt.Sprintf("certificate-%d.pdf", app.ID)
	filePath := filepath.Join(config.AppConfig.UploadDir, filename)

	if err := os.MkdirAll(config.AppConfig.UploadDir, 0755); err != nil {
		log.Printf("Error creating upload dir: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate certificate!", nil)
	}
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		log.Printf("Error writing certificate PDF for application %d: %v", app.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate certificate!", nil)
	}

	app.CertificateURL = utils.GetFileURL(filePath)
	if err := db.Save(&app).Error; err != nil {
		log.Printf("Error storing certificate URL for application %d: %v", app.ID, err)
	}

	return c.Download(filePath, filename)
}
