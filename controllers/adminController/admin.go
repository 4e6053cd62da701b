package adminController

import (
	"encoding/json"
	"fmt"
	"gsp/audit"
	"gsp/config"
	"gsp/database"
	"gsp/middleware"
	"gsp/models"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GetDashboard aggregates portal-wide application statistics
func GetDashboard(c *fiber.Ctx) error {
	db := database.Database.Db

	var total, approved, rejected, pending, fraud, auditQueue int64
	err := db.Model(&models.Application{}).Count(&total).Error
	if err == nil {
		err = db.Model(&models.Application{}).Where("status = ?", models.StatusApproved).Count(&approved).Error
	}
	if err == nil {
		err = db.Model(&models.Application{}).Where("status = ?", models.StatusRejected).Count(&rejected).Error
	}
	if err == nil {
		err = db.Model(&models.Application{}).
			Where("status IN ?", []string{models.StatusSubmitted, models.StatusUnderReview, models.StatusPendingVerification}).
			Count(&pending).Error
	}
	if err == nil {
		err = db.Model(&models.Application{}).Where("verification_is_fraud = ?", true).Count(&fraud).Error
	}
	if err == nil {
		err = db.Model(&models.Application{}).Where("audit_status = ?", models.AuditSelected).Count(&auditQueue).Error
	}
	if err != nil {
		log.Printf("Error computing dashboard stats: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard!", nil)
	}

	var approvalRate, rejectionRate float64
	if total > 0 {
		approvalRate = float64(approved) / float64(total) * 100
		rejectionRate = float64(rejected) / float64(total) * 100
	}

	var recentApplications []models.Application
	db.Order("created_at desc").Limit(10).Find(&recentApplications)

	thresholds := struct{ Borderline int }{Borderline: 80}
	if err := models.GetConfigValue(db, models.ConfigBorderlineThreshold, &thresholds.Borderline); err != nil {
		thresholds.Borderline = 80
	}

	var fraudRisk []models.Application
	db.Where("eligibility_score < ? OR verification_is_fraud = ? OR audit_status = ?",
		thresholds.Borderline, true, models.AuditFlagged).
		Limit(10).
		Find(&fraudRisk)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", fiber.Map{
		"stats": fiber.Map{
			"totalApplications": total,
			"approved":          approved,
			"rejected":          rejected,
			"pending":           pending,
			"fraud":             fraud,
			"auditQueue":        auditQueue,
			"approvalRate":      fmt.Sprintf("%.2f", approvalRate),
			"rejectionRate":     fmt.Sprintf("%.2f", rejectionRate),
		},
		"recentApplications": recentApplications,
		"fraudRisk":          fraudRisk,
	})
}

// GetConfigs returns all policy keys as a key/value map
func GetConfigs(c *fiber.Ctx) error {
	var configs []models.SystemConfig
	if err := database.Database.Db.Find(&configs).Error; err != nil {
		log.Printf("Error fetching configs: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch configurations!", nil)
	}

	configMap := make(map[string]interface{}, len(configs))
	for _, cfg := range configs {
		var value interface{}
		if err := json.Unmarshal(cfg.Value, &value); err != nil {
			log.Printf("Error decoding config %s: %v", cfg.Key, err)
			continue
		}
		configMap[cfg.Key] = value
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Configurations fetched successfully.", configMap)
}

// UpdateConfig upserts one policy key. Last writer wins; the change is
// recorded on the audit trail with the new value.
func UpdateConfig(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedConfig").(*struct {
		Key         string      `json:"key"`
		Value       interface{} `json:"value"`
		Description string      `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var cfg *models.SystemConfig
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		cfg, err = models.UpsertConfig(tx, reqData.Key, reqData.Value, reqData.Description, adminID)
		if err != nil {
			return err
		}
		return models.RecordAudit(tx, nil, adminID, models.ActionModified,
			map[string]interface{}{"configKey": reqData.Key, "newValue": reqData.Value}, c.IP())
	})
	if err != nil {
		log.Printf("Error updating config %s: %v", reqData.Key, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update configuration!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Configuration updated.", cfg)
}

// TriggerAudit runs the compliance sampling for a given month on demand
func TriggerAudit(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAuditTrigger").(*struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	month := reqData.Month
	year := reqData.Year
	now := time.Now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}

	db := database.Database.Db
	cfg := audit.LoadSamplingConfig(db)

	selected, err := audit.SelectRandomAudits(db, month, year, cfg, &adminID)
	if err != nil {
		log.Printf("Error triggering audit for %d/%d: %v", month, year, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to trigger audit!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, fmt.Sprintf("Audit triggered for %d/%d", month, year), fiber.Map{
		"selectedCount": len(selected),
		"applications":  selected,
	})
}

// ExportReport produces a spreadsheet (or JSON) listing of applications
// filtered by date range and status.
func ExportReport(c *fiber.Ctx) error {
	db := database.Database.Db

	query := db.Model(&models.Application{})
	if startDate := c.Query("startDate"); startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if endDate := c.Query("endDate"); endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			// endDate is inclusive of that whole day, so the cutoff is the
			// following midnight, exclusive.
			query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var applications []models.Application
	if err := query.Order("created_at desc").Find(&applications).Error; err != nil {
		log.Printf("Error fetching applications for report: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to export report!", nil)
	}

	if c.Query("format", "excel") != "excel" {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Report fetched successfully.", fiber.Map{
			"applications": applications,
			"count":        len(applications),
		})
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Applications"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Application ID", "Applicant Name", "Aadhaar", "Status", "Eligibility Score",
		"Family Size", "Annual Income", "Created At", "Certificate Number"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, app := range applications {
		certificate := app.CertificateNumber
		if certificate == "" {
			certificate = "N/A"
		}
		values := []interface{}{
			app.ID,
			app.PersonalDetails.Name,
			app.PersonalDetails.AadhaarNumber,
			app.Status,
			app.EligibilityScore,
			app.HouseholdDetails.FamilySize,
			app.IncomeDetails.AnnualIncome,
			app.CreatedAt.Format("2006-01-02 15:04:05"),
			certificate,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("report-%d.xlsx", time.Now().UnixMilli())
	filePath := filepath.Join(config.AppConfig.UploadDir, filename)
	if err := os.MkdirAll(config.AppConfig.UploadDir, 0755); err != nil {
		log.Printf("Error creating upload dir: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to export report!", nil)
	}
	if err := f.SaveAs(filePath); err != nil {
		log.Printf("Error writing report spreadsheet: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to export report!", nil)
	}

	return c.Download(filePath, filename)
}

// CreateUser lets the admin provision officer or applicant accounts
func CreateUser(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCreateUser").(*struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Mobile   string `json:"mobile"`
		Password string `json:"password"`
		Role     string `json:"role"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Mobile:   reqData.Mobile,
		Password: string(hashedPassword),
		Role:     reqData.Role,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		return models.RecordAudit(tx, nil, adminID, models.ActionUserCreated,
			map[string]interface{}{"createdUserId": newUser.ID, "role": newUser.Role, "email": newUser.Email}, c.IP())
	})
	if err != nil {
		log.Printf("Error creating user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
	}

	newUser.Password = ""

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully.", newUser)
}

// ListUsers returns all portal users, newest first
func ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.Database.Db.Order("created_at desc").Find(&users).Error; err != nil {
		log.Printf("Error listing users: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}

	for i := range users {
		users[i].Password = ""
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully.", users)
}

// UpdateUserRole changes a user's role. Admin accounts are protected.
func UpdateUserRole(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedRoleUpdate").(*struct {
		UserID uint   `json:"userId"`
		Role   string `json:"role"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ?", reqData.UserID).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if user.Role == models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Cannot change admin role!", nil)
	}

	user.Role = reqData.Role

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return models.RecordAudit(tx, nil, adminID, models.ActionUserRoleUpdated,
			map[string]interface{}{"targetUserId": user.ID, "newRole": user.Role}, c.IP())
	})
	if err != nil {
		log.Printf("Error updating role for user %d: %v", user.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user role!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User role updated.", user)
}

// UpdateUserStatus activates or deactivates an account. Admin accounts are
// protected.
func UpdateUserStatus(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedStatusUpdate").(*struct {
		UserID   uint `json:"userId"`
		IsActive bool `json:"isActive"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ?", reqData.UserID).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if user.Role == models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Cannot deactivate admin user!", nil)
	}

	user.IsActive = reqData.IsActive

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("is_active", reqData.IsActive).Error; err != nil {
			return err
		}
		return models.RecordAudit(tx, nil, adminID, models.ActionUserStatusUpdated,
			map[string]interface{}{"targetUserId": user.ID, "isActive": reqData.IsActive}, c.IP())
	})
	if err != nil {
		log.Printf("Error updating status for user %d: %v", user.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user status!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User status updated.", user)
}
