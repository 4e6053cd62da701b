package applicationController

import (
	"bytes"
	"encoding/json"
	"fmt"
	"gsp/config"
	"gsp/database"
	"gsp/models"
	applicationValidator "gsp/validators/application"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig = &config.Config{
		Port:      "0",
		JWTKey:    "test-secret",
		SaltRound: 4,
		UploadDir: t.TempDir(),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Application{}, &models.SystemConfig{}, &models.AuditTrail{}))
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()

	// Tests drive the actor identity through a header instead of a JWT.
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-Id"); v != "" {
			id, err := strconv.Atoi(v)
			require.NoError(t, err)
			c.Locals("userId", uint(id))
		}
		return c.Next()
	})

	app.Post("/applications", applicationValidator.Create(), CreateApplication)
	app.Put("/applications/:id", applicationValidator.Update(), UpdateApplication)
	app.Post("/applications/:applicationId/submit", SubmitApplication)
	app.Get("/applications/my-application", GetMyApplication)

	return app, db
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doMultipart(t *testing.T, app *fiber.App, method, url string, userID uint, fields map[string]string) (*http.Response, envelope) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-User-Id", fmt.Sprintf("%d", userID))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return resp, env
}

func validCreateFields() map[string]string {
	return map[string]string{
		"personalDetails":  `{"name":"Ramesh Kumar","aadhaarNumber":"123456789012"}`,
		"householdDetails": `{"familySize":5,"rationCardCategory":"AAY"}`,
		"incomeDetails":    `{"annualIncome":45000,"itrFiled":false}`,
		"consentAccepted":  "true",
	}
}

func TestCreateApplication(t *testing.T) {
	app, db := setupApp(t)

	resp, env := doMultipart(t, app, "POST", "/applications", 1, validCreateFields())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created models.Application
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, models.StatusDraft, created.Status)
	assert.Equal(t, "Ramesh Kumar", created.PersonalDetails.Name)
	assert.True(t, created.DigitalConsent.Accepted)
	assert.NotNil(t, created.DigitalConsent.AcceptedAt)

	var trail []models.AuditTrail
	require.NoError(t, db.Where("application_id = ?", created.ID).Find(&trail).Error)
	require.Len(t, trail, 1)
	assert.Equal(t, models.ActionCreated, trail[0].Action)
}

func TestCreateApplication_DuplicateOpenApplication(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doMultipart(t, app, "POST", "/applications", 1, validCreateFields())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doMultipart(t, app, "POST", "/applications", 1, validCreateFields())
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// A different applicant is unaffected
	resp, _ = doMultipart(t, app, "POST", "/applications", 2, validCreateFields())
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestCreateApplication_ValidationErrors(t *testing.T) {
	app, _ := setupApp(t)

	fields := validCreateFields()
	fields["personalDetails"] = `{"name":"","aadhaarNumber":"12"}`
	resp, _ := doMultipart(t, app, "POST", "/applications", 1, fields)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	fields = validCreateFields()
	fields["householdDetails"] = `{"familySize":0}`
	resp, _ = doMultipart(t, app, "POST", "/applications", 1, fields)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func createDraft(t *testing.T, app *fiber.App, userID uint, fields map[string]string) models.Application {
	t.Helper()
	resp, env := doMultipart(t, app, "POST", "/applications", userID, fields)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created models.Application
	require.NoError(t, json.Unmarshal(env.Data, &created))
	return created
}

func TestUpdateApplication_MergesPartialEdits(t *testing.T) {
	app, _ := setupApp(t)
	draft := createDraft(t, app, 1, validCreateFields())

	url := fmt.Sprintf("/applications/%d", draft.ID)
	fields := map[string]string{"householdDetails": `{"familySize":7}`}

	resp, env := doMultipart(t, app, "PUT", url, 1, fields)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.Application
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 7, updated.HouseholdDetails.FamilySize)
	// Fields the patch did not mention are preserved
	assert.Equal(t, models.RationCardAAY, updated.HouseholdDetails.RationCardCategory)
	assert.Equal(t, "Ramesh Kumar", updated.PersonalDetails.Name)
}

func TestUpdateApplication_Idempotent(t *testing.T) {
	app, _ := setupApp(t)
	draft := createDraft(t, app, 1, validCreateFields())

	url := fmt.Sprintf("/applications/%d", draft.ID)
	fields := map[string]string{"incomeDetails": `{"annualIncome":30000}`}

	_, first := doMultipart(t, app, "PUT", url, 1, fields)
	_, second := doMultipart(t, app, "PUT", url, 1, fields)

	var a, b models.Application
	require.NoError(t, json.Unmarshal(first.Data, &a))
	require.NoError(t, json.Unmarshal(second.Data, &b))
	assert.Equal(t, a.IncomeDetails, b.IncomeDetails)
	assert.Equal(t, a.HouseholdDetails, b.HouseholdDetails)
}

func TestUpdateApplication_NotFoundWhenNotDraft(t *testing.T) {
	app, db := setupApp(t)
	draft := createDraft(t, app, 1, validCreateFields())

	require.NoError(t, db.Model(&models.Application{}).Where("id = ?", draft.ID).
		Update("status", models.StatusPendingVerification).Error)

	url := fmt.Sprintf("/applications/%d", draft.ID)
	resp, _ := doMultipart(t, app, "PUT", url, 1, map[string]string{"incomeDetails": `{"annualIncome":1}`})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmitApplication_HighScoreNeverAutoApproves(t *testing.T) {
	app, db := setupApp(t)
	// AAY(70) + income certificate(50) + no ITR(20) = 140 >= 100
	fields := validCreateFields()
	fields["incomeDetails"] = `{"annualIncome":45000,"incomeCertificateAmount":30000,"itrFiled":false}`
	draft := createDraft(t, app, 1, fields)

	url := fmt.Sprintf("/applications/%d/submit", draft.ID)
	resp, _ := doMultipart(t, app, "POST", url, 1, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var submitted models.Application
	require.NoError(t, db.Where("id = ?", draft.ID).First(&submitted).Error)

	// The approved suggestion is downgraded: approval needs a human.
	assert.Equal(t, models.StatusPendingVerification, submitted.Status)
	assert.Equal(t, 140, submitted.EligibilityScore)
	assert.Equal(t, 140, submitted.ScoringBreakdown.TotalScore)
	assert.Equal(t, 70, submitted.ScoringBreakdown.RationCardScore)
	assert.Equal(t, 50, submitted.ScoringBreakdown.IncomeScore)
	assert.Equal(t, 20, submitted.ScoringBreakdown.ItrScore)
	assert.EqualValues(t, 2, submitted.Version)

	var trail []models.AuditTrail
	require.NoError(t, db.Where("application_id = ? AND action = ?", draft.ID, models.ActionSubmitted).Find(&trail).Error)
	assert.Len(t, trail, 1)
}

func TestSubmitApplication_BorderlineGoesToVerification(t *testing.T) {
	app, db := setupApp(t)
	// BPL(50) + no ITR(20) + family of 5(10) = 80, the borderline floor
	fields := validCreateFields()
	fields["householdDetails"] = `{"familySize":5,"rationCardCategory":"BPL"}`
	draft := createDraft(t, app, 1, fields)

	url := fmt.Sprintf("/applications/%d/submit", draft.ID)
	resp, _ := doMultipart(t, app, "POST", url, 1, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var submitted models.Application
	require.NoError(t, db.Where("id = ?", draft.ID).First(&submitted).Error)
	assert.Equal(t, models.StatusPendingVerification, submitted.Status)
	assert.Equal(t, 80, submitted.EligibilityScore)
}

func TestSubmitApplication_LowScoreRejects(t *testing.T) {
	app, db := setupApp(t)
	// APL(0) + ITR filed(0) = 0 < 80
	fields := validCreateFields()
	fields["householdDetails"] = `{"familySize":2,"rationCardCategory":"APL"}`
	fields["incomeDetails"] = `{"annualIncome":45000,"itrFiled":true}`
	draft := createDraft(t, app, 1, fields)

	url := fmt.Sprintf("/applications/%d/submit", draft.ID)
	resp, _ := doMultipart(t, app, "POST", url, 1, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var submitted models.Application
	require.NoError(t, db.Where("id = ?", draft.ID).First(&submitted).Error)
	assert.Equal(t, models.StatusRejected, submitted.Status)
	assert.Equal(t, 0, submitted.EligibilityScore)
}

func TestSubmitApplication_OnlyFromDraft(t *testing.T) {
	app, _ := setupApp(t)
	draft := createDraft(t, app, 1, validCreateFields())

	url := fmt.Sprintf("/applications/%d/submit", draft.ID)
	resp, _ := doMultipart(t, app, "POST", url, 1, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A second submit is an invalid state transition
	resp, _ = doMultipart(t, app, "POST", url, 1, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitApplication_OtherApplicantCannotSubmit(t *testing.T) {
	app, _ := setupApp(t)
	draft := createDraft(t, app, 1, validCreateFields())

	url := fmt.Sprintf("/applications/%d/submit", draft.ID)
	resp, _ := doMultipart(t, app, "POST", url, 2, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetMyApplication(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/applications/my-application", nil)
	req.Header.Set("X-User-Id", "1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	createDraft(t, app, 1, validCreateFields())

	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSubmitApplication_ConcurrentWriterConflict(t *testing.T) {
	app, db := setupApp(t)
	draft := createDraft(t, app, 1, validCreateFields())

	// A competing writer advances the version after the handler has read the
	// draft but before its guarded update runs.
	fired := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("competing_writer", func(d *gorm.DB) {
		if fired || d.Statement.Table != "applications" {
			return
		}
		fired = true
		_, err := d.Statement.ConnPool.ExecContext(d.Statement.Context,
			"UPDATE applications SET version = version + 1 WHERE id = ?", draft.ID)
		require.NoError(t, err)
	}))

	url := fmt.Sprintf("/applications/%d/submit", draft.ID)
	resp, _ := doMultipart(t, app, "POST", url, 1, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// The losing transaction leaves no trace: no transition, no score, no
	// trail entry.
	var stored models.Application
	require.NoError(t, db.Where("id = ?", draft.ID).First(&stored).Error)
	assert.Equal(t, models.StatusDraft, stored.Status)
	assert.Equal(t, 0, stored.EligibilityScore)

	var trail int64
	require.NoError(t, db.Model(&models.AuditTrail{}).
		Where("application_id = ? AND action = ?", draft.ID, models.ActionSubmitted).
		Count(&trail).Error)
	assert.EqualValues(t, 0, trail)
}
