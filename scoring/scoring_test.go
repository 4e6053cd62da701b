package scoring

import (
	"gsp/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func floatPtr(v float64) *float64 { return &v }

func baseApplication() *models.Application {
	return &models.Application{
		HouseholdDetails: models.HouseholdDetails{FamilySize: 3},
		IncomeDetails:    models.IncomeDetails{AnnualIncome: 40000, ItrFiled: true},
	}
}

func TestCalculateEligibilityScore_RationCardCategories(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		category string
		expected int
	}{
		{models.RationCardAAY, 70},
		{models.RationCardBPL, 50},
		{models.RationCardAPL, 0},
		{models.RationCardNone, 0},
		{"", 0},
		{"UNKNOWN", 0},
	}

	for _, tt := range tests {
		app := baseApplication()
		app.HouseholdDetails.RationCardCategory = tt.category

		breakdown := CalculateEligibilityScore(app, rules)
		assert.Equal(t, tt.expected, breakdown.RationCardScore, "category %q", tt.category)
	}
}

func TestCalculateEligibilityScore_IncomeCertificatePresenceOnly(t *testing.T) {
	rules := DefaultRules()

	app := baseApplication()
	breakdown := CalculateEligibilityScore(app, rules)
	assert.Equal(t, 0, breakdown.IncomeScore)

	// The certified amount's value is irrelevant, only its presence counts.
	app.IncomeDetails.IncomeCertificateAmount = floatPtr(999999)
	breakdown = CalculateEligibilityScore(app, rules)
	assert.Equal(t, 50, breakdown.IncomeScore)

	app.IncomeDetails.IncomeCertificateAmount = floatPtr(0)
	breakdown = CalculateEligibilityScore(app, rules)
	assert.Equal(t, 50, breakdown.IncomeScore)
}

func TestCalculateEligibilityScore_ItrAndElectricity(t *testing.T) {
	rules := DefaultRules()

	app := baseApplication()
	app.IncomeDetails.ItrFiled = false
	breakdown := CalculateEligibilityScore(app, rules)
	assert.Equal(t, 20, breakdown.ItrScore)

	app.IncomeDetails.ItrFiled = true
	breakdown = CalculateEligibilityScore(app, rules)
	assert.Equal(t, 0, breakdown.ItrScore)

	app.Documents.ElectricityBill = "/uploads/bill.pdf"
	breakdown = CalculateEligibilityScore(app, rules)
	assert.Equal(t, 20, breakdown.ElectricityScore)
}

func TestCalculateEligibilityScore_FamilySizeCap(t *testing.T) {
	rules := DefaultRules() // perMember=10, maxMembers=4

	tests := []struct {
		familySize int
		expected   int
	}{
		{1, 0},
		{2, 0},
		{3, 0},
		{4, 0},
		{5, 10},
		{6, 20},
		{7, 20},
		{100, 20}, // capped at two incremental members
	}

	for _, tt := range tests {
		app := baseApplication()
		app.HouseholdDetails.FamilySize = tt.familySize

		breakdown := CalculateEligibilityScore(app, rules)
		assert.Equal(t, tt.expected, breakdown.FamilySizeScore, "familySize %d", tt.familySize)
	}
}

func TestCalculateEligibilityScore_TotalIsSumAndNonNegative(t *testing.T) {
	rules := DefaultRules()

	app := baseApplication()
	app.HouseholdDetails.RationCardCategory = models.RationCardAAY
	app.HouseholdDetails.FamilySize = 6
	app.IncomeDetails.IncomeCertificateAmount = floatPtr(30000)
	app.IncomeDetails.ItrFiled = false
	app.Documents.ElectricityBill = "/uploads/bill.pdf"

	breakdown := CalculateEligibilityScore(app, rules)

	sum := breakdown.RationCardScore + breakdown.IncomeScore + breakdown.ElectricityScore +
		breakdown.ItrScore + breakdown.FamilySizeScore
	assert.Equal(t, sum, breakdown.TotalScore)
	assert.Equal(t, 70+50+20+20+20, breakdown.TotalScore)

	assert.GreaterOrEqual(t, breakdown.RationCardScore, 0)
	assert.GreaterOrEqual(t, breakdown.IncomeScore, 0)
	assert.GreaterOrEqual(t, breakdown.ElectricityScore, 0)
	assert.GreaterOrEqual(t, breakdown.ItrScore, 0)
	assert.GreaterOrEqual(t, breakdown.FamilySizeScore, 0)
}

func TestCalculateEligibilityScore_Deterministic(t *testing.T) {
	rules := DefaultRules()

	app := baseApplication()
	app.HouseholdDetails.RationCardCategory = models.RationCardBPL
	app.HouseholdDetails.FamilySize = 5

	first := CalculateEligibilityScore(app, rules)
	second := CalculateEligibilityScore(app, rules)
	assert.Equal(t, first, second)
}

func TestDetermineStatus(t *testing.T) {
	thresholds := DefaultThresholds()

	assert.Equal(t, models.StatusApproved, DetermineStatus(100, thresholds))
	assert.Equal(t, models.StatusApproved, DetermineStatus(150, thresholds))
	assert.Equal(t, models.StatusPendingVerification, DetermineStatus(80, thresholds))
	assert.Equal(t, models.StatusPendingVerification, DetermineStatus(99, thresholds))
	assert.Equal(t, models.StatusRejected, DetermineStatus(79, thresholds))
	assert.Equal(t, models.StatusRejected, DetermineStatus(0, thresholds))
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SystemConfig{}))
	return db
}

func TestLoadRules_FallsBackToDefaults(t *testing.T) {
	db := setupTestDB(t)

	rules := LoadRules(db)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules_ReadsConfiguredRules(t *testing.T) {
	db := setupTestDB(t)

	configured := Rules{
		RationCard:             map[string]int{models.RationCardAAY: 90, models.RationCardBPL: 60},
		IncomeCertificate:      40,
		NoITR:                  10,
		ElectricityConsumption: 15,
		FamilySize:             FamilySizeRule{PerMember: 5, MaxMembers: 3},
	}
	_, err := models.UpsertConfig(db, models.ConfigScoringRules, configured, "", 1)
	require.NoError(t, err)

	rules := LoadRules(db)
	assert.Equal(t, configured, rules)
}

func TestLoadThresholds_DefaultsAndOverrides(t *testing.T) {
	db := setupTestDB(t)

	assert.Equal(t, DefaultThresholds(), LoadThresholds(db))

	_, err := models.UpsertConfig(db, models.ConfigEligibilityThreshold, 120, "", 1)
	require.NoError(t, err)

	thresholds := LoadThresholds(db)
	assert.Equal(t, 120, thresholds.Eligibility)
	assert.Equal(t, 80, thresholds.Borderline) // unconfigured key keeps its default
}
